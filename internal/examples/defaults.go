package examples

// defaultExamples returns the built-in question/SQL pairs covering the most
// common query shapes against the match database. Returned fresh each call so
// reloads can rebuild the slice without aliasing.
func defaultExamples() []Example {
	return []Example{
		{
			Question: "Hoe vaak heeft Feyenoord gewonnen van Ajax?",
			SQL: "SELECT COUNT(*) FROM matches WHERE " +
				"(((homeClubName = 'Feyenoord' OR homeClubId = (SELECT clubId FROM clubs WHERE clubName='Feyenoord')) " +
				"AND (awayClubName = 'Ajax' OR awayClubId = (SELECT clubId FROM clubs WHERE clubName='Ajax')) " +
				"AND homeClubFinalScore > awayClubFinalScore) " +
				"OR ((homeClubName = 'Ajax' OR homeClubId = (SELECT clubId FROM clubs WHERE clubName='Ajax')) " +
				"AND (awayClubName = 'Feyenoord' OR awayClubId = (SELECT clubId FROM clubs WHERE clubName='Feyenoord')) " +
				"AND awayClubFinalScore > homeClubFinalScore));",
		},
		{
			Question: "Hoe vaak hebben Coen Moulijn en Sjaak Swart tegelijk in een wedstrijd gescoord?",
			SQL: "SELECT p1.playerName AS player1, p2.playerName AS player2, COUNT(DISTINCT g1.matchId) AS matches_together " +
				"FROM goals g1 JOIN goals g2 ON g1.matchId = g2.matchId AND g1.playerId != g2.playerId " +
				"JOIN players p1 ON g1.playerId = p1.playerId JOIN players p2 ON g2.playerId = p2.playerId " +
				"WHERE (p1.playerName = 'Coen Moulijn' AND p2.playerName = 'Sjaak Swart') " +
				"OR (p1.playerName = 'Sjaak Swart' AND p2.playerName = 'Coen Moulijn') " +
				"GROUP BY player1, player2;",
		},
		{
			Question: "Wat is de grootste overwinning van Feyenoord op PSV?",
			SQL: "SELECT m.dateAndTime, m.homeClubName, m.awayClubName, m.homeClubFinalScore, m.awayClubFinalScore " +
				"FROM matches m WHERE " +
				"(((homeClubName = 'Feyenoord' OR homeClubId = (SELECT clubId FROM clubs WHERE clubName='Feyenoord')) " +
				"AND (awayClubName = 'PSV' OR awayClubId = (SELECT clubId FROM clubs WHERE clubName='PSV')) " +
				"AND homeClubFinalScore > awayClubFinalScore) " +
				"OR ((homeClubName = 'PSV' OR homeClubId = (SELECT clubId FROM clubs WHERE clubName='PSV')) " +
				"AND (awayClubName = 'Feyenoord' OR awayClubId = (SELECT clubId FROM clubs WHERE clubName='Feyenoord')) " +
				"AND awayClubFinalScore > homeClubFinalScore)) " +
				"ORDER BY ABS(m.homeClubFinalScore - m.awayClubFinalScore) DESC, " +
				"MAX(m.homeClubFinalScore, m.awayClubFinalScore) ASC, m.dateAndTime ASC LIMIT 5;",
		},
	}
}
