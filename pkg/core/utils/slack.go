package utils

import (
	"regexp"
	"strings"
)

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic    = regexp.MustCompile(`__(.+?)__`)
	reStrike    = regexp.MustCompile(`~~(.+?)~~`)
	reCodeBlock = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)\\n```")
	reLink      = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reBullet    = regexp.MustCompile(`(?m)^[\-\*]\s+`)
	reNumbered  = regexp.MustCompile(`(?m)^\d+\.\s+`)
	reHeading   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reTrailWS   = regexp.MustCompile(`(?m)[ \t]+$`)
)

// MarkdownToSlack converts common Markdown to Slack mrkdwn so the text
// report sections render correctly when posted as chat messages.
func MarkdownToSlack(md string) string {
	md = reBold.ReplaceAllString(md, `*$1*`)
	md = reItalic.ReplaceAllString(md, `_${1}_`)
	md = reStrike.ReplaceAllString(md, `~$1~`)
	md = reCodeBlock.ReplaceAllString(md, "```$1```")
	md = reLink.ReplaceAllString(md, `<$2|$1>`)
	md = reBullet.ReplaceAllString(md, "• ")
	md = reNumbered.ReplaceAllString(md, "• ")
	md = reHeading.ReplaceAllString(md, "")
	md = reTrailWS.ReplaceAllString(md, "")
	return strings.TrimSpace(md)
}
