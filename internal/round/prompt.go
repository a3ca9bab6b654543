package round

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the single instruction sent to the text upstream.
func BuildPrompt(topic string, count int, exclude []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Topic: %q.\n", topic)
	fmt.Fprintf(&sb, "Write %d balance-game questions on this topic: each one is a pair of options that are agonisingly hard to choose between.\n\n", count)

	sb.WriteString("Guidelines:\n")
	sb.WriteString("1. No obvious, overused dilemmas. Each pair should stretch the imagination.\n")
	sb.WriteString("2. Keep every option short and punchy, at most five words.\n")
	sb.WriteString("3. Every question must use a completely different subject from the others.\n")
	if excl := cleanExclude(exclude); len(excl) > 0 {
		fmt.Fprintf(&sb, "4. Avoid anything similar to these: %s.\n", strings.Join(excl, ", "))
	}

	sb.WriteString("\nRespond ONLY with a JSON array in exactly this shape, no preamble:\n")
	sb.WriteString(`[
  { "optionText1": "first option", "optionText2": "second option", "keyword1": "SingleEnglishNoun", "keyword2": "SingleEnglishNoun" }
]`)
	sb.WriteString("\nkeyword1 and keyword2 are single English nouns used to search for a photo of each option.\n")

	return sb.String()
}

// cleanExclude trims, drops blanks and de-duplicates, keeping first-seen order.
func cleanExclude(exclude []string) []string {
	seen := make(map[string]struct{}, len(exclude))
	out := make([]string, 0, len(exclude))
	for _, e := range exclude {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
