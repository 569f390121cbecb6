package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// repl runs the interactive chat loop on one session until EOF or /quit.
func (a *app) repl(ctx context.Context) error {
	sessionID := a.sessions.Create()

	fmt.Println(infoStyle.Render("matchday — ask about " + a.cfg.ClubName + "'s match history. /quit to leave."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		answer, err := a.turn(ctx, sessionID, line)
		if err != nil {
			logger.Error("turn failed", zap.Error(err))
			fmt.Println(infoStyle.Render("Something went wrong, please try again."))
			continue
		}
		fmt.Println(a.render(answer))
	}
	return scanner.Err()
}

// render formats an answer as markdown for the terminal; raw results and
// rendering failures print as-is.
func (a *app) render(answer string) string {
	if !a.cfg.Workflow.FormatOutput {
		return answer
	}
	out, err := glamour.Render(answer, "dark")
	if err != nil {
		return answer
	}
	return strings.TrimRight(out, "\n")
}
