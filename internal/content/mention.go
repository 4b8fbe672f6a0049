package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kanka mentions look like [entity:123] or [entity:123|The Duke].
// Anything whose id is not numeric is plain text, not a mention.
var mentionPattern = regexp.MustCompile(`\[entity:(\d+)(?:\|([^\]]+))?\]`)

// Placeholders must contain no Markdown or HTML metacharacters so the
// converters pass them through untouched.
const placeholderFormat = "KANKAMENTIONPLACEHOLDER%d"

// Mention is one cross-reference token lifted out of a text body.
type Mention struct {
	Placeholder string
	EntityID    string
	Label       string
}

// String reassembles the original token text.
func (m Mention) String() string {
	if m.Label != "" {
		return fmt.Sprintf("[entity:%s|%s]", m.EntityID, m.Label)
	}
	return fmt.Sprintf("[entity:%s]", m.EntityID)
}

// ExtractMentions replaces every mention in text with a unique
// placeholder and returns the mentions in order of first appearance.
func ExtractMentions(text string) (string, []Mention) {
	var mentions []Mention
	protected := mentionPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := mentionPattern.FindStringSubmatch(match)
		m := Mention{
			Placeholder: fmt.Sprintf(placeholderFormat, len(mentions)),
			EntityID:    groups[1],
			Label:       groups[2],
		}
		mentions = append(mentions, m)
		return m.Placeholder
	})
	return protected, mentions
}

// RestoreMentions substitutes placeholders back with their original
// token text. Longer placeholders are restored first so that
// ...PLACEHOLDER10 is never clipped by the ...PLACEHOLDER1 pass.
func RestoreMentions(text string, mentions []Mention) string {
	ordered := make([]Mention, len(mentions))
	copy(ordered, mentions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Placeholder) > len(ordered[j].Placeholder)
	})

	for _, m := range ordered {
		text = strings.ReplaceAll(text, m.Placeholder, m.String())
	}
	return text
}
