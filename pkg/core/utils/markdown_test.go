package utils

import "testing"

func TestValidateMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"pipe table", "| Date | Invoice Number |\n|---|---|\n| 28/Dec/2024 | INV-001 |", true},
		{"prose around table", "Here you go:\n\n| a | b |\n| 1 | 2 |", true},
		{"empty", "", false},
		{"whitespace only", "   \n\t\n", false},
		{"prose without table", "The document contains no invoices.", false},
		{"binary junk", string([]byte{0x00, 0xff, 0xfe, 0x03, 0x1b}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateMarkdown(tc.in); got != tc.want {
				t.Errorf("ValidateMarkdown(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"markdown fence", "```markdown\n| a |\n```", "| a |"},
		{"bare fence", "```\n| a |\n```", "| a |"},
		{"no fence", "| a |", "| a |"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanMarkdown(tc.in); got != tc.want {
				t.Errorf("CleanMarkdown(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
