package content

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Converter translates rich text between the Markdown the agent works
// with and the HTML the Kanka API stores, keeping mentions intact in
// both directions. Conversion never fails: malformed input is handed
// back unchanged and treated as opaque by callers.
type Converter struct {
	markdown  goldmark.Markdown
	inbound   *md.Converter
	sanitizer *bluemonday.Policy
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func NewConverter() *Converter {
	inbound := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
	})

	// Kanka stores full rich text; keep the content tags and drop
	// everything a remote edit could have smuggled in.
	sanitizer := bluemonday.UGCPolicy()

	return &Converter{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				ghtml.WithHardWraps(),
				ghtml.WithUnsafe(),
			),
		),
		inbound:   inbound,
		sanitizer: sanitizer,
	}
}

// ToHTML converts Markdown to an HTML fragment for the remote API.
func (c *Converter) ToHTML(markdown string) string {
	if markdown == "" {
		return ""
	}

	protected, mentions := ExtractMentions(markdown)

	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(protected), &buf); err != nil {
		return markdown
	}

	return RestoreMentions(strings.TrimSpace(buf.String()), mentions)
}

// ToMarkdown converts HTML from the remote API back into Markdown.
func (c *Converter) ToMarkdown(html string) string {
	if html == "" {
		return ""
	}

	protected, mentions := ExtractMentions(html)
	protected = c.sanitizer.Sanitize(protected)

	converted, err := c.inbound.ConvertString(protected)
	if err != nil {
		return html
	}

	converted = blankRuns.ReplaceAllString(strings.TrimSpace(converted), "\n\n")
	return RestoreMentions(converted, mentions)
}
