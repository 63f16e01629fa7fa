package site

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/russross/blackfriday/v2"
)

// IntroFile is the Markdown file rendered at the top of a listing page.
const IntroFile = "README.md"

// FrontMatter holds data scraped from a Markdown intro.
type FrontMatter struct {
	Title string `toml:"title"` // Replaces the listing heading
}

// fmRegexp is the regular expression used to split out front matter.
var fmRegexp = regexp.MustCompile(`(?m)^\s*\+\+\+\s*$`)

// extractFrontMatter splits the front matter and Markdown content.
func extractFrontMatter(x []byte) (fm, r []byte) {
	subs := fmRegexp.Split(string(x), 3)
	if len(subs) != 3 {
		return nil, x
	}
	if s := strings.TrimSpace(subs[0]); len(s) > 0 {
		return nil, x
	}
	return []byte(strings.TrimSpace(subs[1])), []byte(strings.TrimSpace(subs[2]))
}

// RenderMarkdown renders b to HTML, returning its front matter.
// The Markdown is trusted site content and is not sanitized.
func RenderMarkdown(b []byte) (*FrontMatter, template.HTML, error) {
	var front FrontMatter
	fm, r := extractFrontMatter(b)
	if len(fm) > 0 {
		err := toml.Unmarshal(fm, &front)
		if err != nil {
			return nil, "", fmt.Errorf("RenderMarkdown: %w", err)
		}
	}
	md := template.HTML(blackfriday.Run(r, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes)))
	return &front, md, nil
}
