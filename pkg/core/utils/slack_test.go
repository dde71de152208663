package utils

import (
	"strings"
	"testing"
)

func TestMarkdownToSlack(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**Total Booked**", "*Total Booked*"},
		{"italic", "__note__", "_note_"},
		{"strike", "~~void~~", "~void~"},
		{"link", "[report](https://example.com/r.xlsx)", "<https://example.com/r.xlsx|report>"},
		{"bullet", "- first\n- second", "• first\n• second"},
		{"numbered", "1. first\n2. second", "• first\n• second"},
		{"heading stripped", "## Summary\nbody", "Summary\nbody"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkdownToSlack(tc.in); got != tc.want {
				t.Errorf("MarkdownToSlack(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMarkdownToSlackKeepsCodeBlocks(t *testing.T) {
	in := "```markdown\n| a | b |\n```"
	got := MarkdownToSlack(in)
	if !strings.Contains(got, "| a | b |") {
		t.Errorf("code block content lost: %q", got)
	}
	if strings.Contains(got, "markdown") {
		t.Errorf("language tag should be stripped: %q", got)
	}
}
