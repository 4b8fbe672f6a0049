package content

import (
	"strings"
	"testing"
)

func TestToHTML_Formatting(t *testing.T) {
	c := NewConverter()

	html := c.ToHTML("# Title\n\nSome **bold** and *italic* and `code`.\n\n- one\n- two")

	for _, want := range []string{"<h1", "<strong>bold</strong>", "<em>italic</em>", "<code>code</code>", "<ul>", "<li>one</li>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in output: %q", want, html)
		}
	}
	if strings.Contains(html, "<html") || strings.Contains(html, "<body") {
		t.Fatalf("output is not a fragment: %q", html)
	}
}

func TestToHTML_PreservesMentions(t *testing.T) {
	c := NewConverter()

	html := c.ToHTML("**Meet** [entity:42|The Duke] at [entity:7].")

	if !strings.Contains(html, "[entity:42|The Duke]") {
		t.Fatalf("labeled mention mangled: %q", html)
	}
	if !strings.Contains(html, "[entity:7]") {
		t.Fatalf("bare mention mangled: %q", html)
	}
}

func TestToMarkdown_CleansHTML(t *testing.T) {
	c := NewConverter()

	markdown := c.ToMarkdown("<h2>History</h2><p>The <strong>old</strong> keep.</p><ul><li>ruined</li></ul>")

	if !strings.Contains(markdown, "## History") {
		t.Fatalf("heading not converted: %q", markdown)
	}
	if !strings.Contains(markdown, "**old**") {
		t.Fatalf("bold not converted: %q", markdown)
	}
	if !strings.Contains(markdown, "- ruined") {
		t.Fatalf("list not converted: %q", markdown)
	}
	if strings.Contains(markdown, "<") {
		t.Fatalf("residual HTML: %q", markdown)
	}
}

func TestRoundTrip_PreservesMentions(t *testing.T) {
	c := NewConverter()
	text := "# Chronicle\n\n[entity:12|Aelysh] met [entity:34] near the gate.\n\n- witnessed by [entity:56|The Warden]"

	back := c.ToMarkdown(c.ToHTML(text))

	for _, token := range []string{"[entity:12|Aelysh]", "[entity:34]", "[entity:56|The Warden]"} {
		if strings.Count(back, token) != 1 {
			t.Fatalf("token %q not preserved exactly once: %q", token, back)
		}
	}
}

func TestRoundTrip_Idempotent(t *testing.T) {
	c := NewConverter()
	text := "Plain line with [entity:9] inside."

	once := c.ToMarkdown(c.ToHTML(text))
	twice := c.ToMarkdown(c.ToHTML(once))

	if once != twice {
		t.Fatalf("second round trip changed content:\n%q\n%q", once, twice)
	}
	if strings.Count(twice, "[entity:9]") != 1 {
		t.Fatalf("mention duplicated or lost: %q", twice)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	c := NewConverter()

	if got := c.ToHTML(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := c.ToMarkdown(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
