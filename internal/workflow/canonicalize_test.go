package workflow

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		resolved map[string]string
		want     string
	}{
		{
			name:     "simple substitution",
			in:       "hoe vaak won feijenoord?",
			resolved: map[string]string{"feijenoord": "Feyenoord"},
			want:     "hoe vaak won Feyenoord?",
		},
		{
			name:     "case insensitive",
			in:       "Wat deed AJAXX vorig jaar",
			resolved: map[string]string{"ajaxx": "Ajax"},
			want:     "Wat deed Ajax vorig jaar",
		},
		{
			name:     "word boundary respected",
			in:       "de ajaxxers en ajaxx",
			resolved: map[string]string{"ajaxx": "Ajax"},
			want:     "de ajaxxers en Ajax",
		},
		{
			name: "longest mention first",
			in:   "speelde Jan Boskamp tegen Jan?",
			resolved: map[string]string{
				"Jan":         "Jan van Beveren",
				"Jan Boskamp": "Johannes Boskamp",
			},
			want: "speelde Johannes Boskamp tegen Jan van Beveren?",
		},
		{
			name:     "no resolutions",
			in:       "wie scoorde het meest?",
			resolved: nil,
			want:     "wie scoorde het meest?",
		},
		{
			name:     "multi byte names keep alignment",
			in:       "goals van hödd dit seizoen",
			resolved: map[string]string{"hödd": "IL Hødd"},
			want:     "goals van IL Hødd dit seizoen",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonicalize(tc.in, tc.resolved); got != tc.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
