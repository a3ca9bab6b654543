package round

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyashahama/balance-cup-backend/internal/ai"
)

// Draft is one item as the text upstream describes it, before images and ids.
type Draft struct {
	OptionText1 string
	OptionText2 string
	Keyword1    string
	Keyword2    string
}

// rawDraft accepts both the current keys and the short legacy ones
// (option1, kw1, ...) that older prompts asked for.
type rawDraft struct {
	OptionText1 string `json:"optionText1"`
	OptionText2 string `json:"optionText2"`
	Keyword1    string `json:"keyword1"`
	Keyword2    string `json:"keyword2"`

	Option1 string `json:"option1"`
	Option2 string `json:"option2"`
	Kw1     string `json:"kw1"`
	Kw2     string `json:"kw2"`
}

const (
	// maxReplyBytes bounds the model output ParseDrafts will scan.
	maxReplyBytes = 64 << 10
	// maxArrayCandidates bounds how many '[' positions are tried.
	maxArrayCandidates = 32
)

// ParseDrafts extracts the first JSON array of objects embedded in free-form
// model output that yields at least one usable draft. Prose, markdown fences
// and trailing chatter around the array are ignored. Entries missing either
// option text are dropped.
//
// An array that decodes but holds no usable entry (e.g. "[]" quoted in prose)
// is skipped in favour of a later one; if nothing better follows, the result
// is an empty list. When no array decodes at all, or the reply is oversized,
// it returns ai.ErrMalformedResponse; callers treat that as an empty list.
func ParseDrafts(text string) ([]Draft, error) {
	if len(text) > maxReplyBytes {
		return nil, fmt.Errorf("%w: reply of %d bytes exceeds %d", ai.ErrMalformedResponse, len(text), maxReplyBytes)
	}

	decoded := false
	tried := 0
	for i := 0; i < len(text) && tried < maxArrayCandidates; i++ {
		j := strings.IndexByte(text[i:], '[')
		if j < 0 {
			break
		}
		i += j
		tried++

		// The decoder stops at the end of the value, so text after the
		// array does not matter.
		var raws []rawDraft
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raws); err != nil {
			continue
		}
		decoded = true
		if drafts := toDrafts(raws); len(drafts) > 0 {
			return drafts, nil
		}
	}
	if !decoded {
		return nil, fmt.Errorf("%w: no JSON array of objects in %d bytes", ai.ErrMalformedResponse, len(text))
	}
	return []Draft{}, nil
}

func toDrafts(raws []rawDraft) []Draft {
	drafts := make([]Draft, 0, len(raws))
	for _, r := range raws {
		d := Draft{
			OptionText1: firstNonEmpty(r.OptionText1, r.Option1),
			OptionText2: firstNonEmpty(r.OptionText2, r.Option2),
			Keyword1:    firstNonEmpty(r.Keyword1, r.Kw1),
			Keyword2:    firstNonEmpty(r.Keyword2, r.Kw2),
		}
		if d.OptionText1 == "" || d.OptionText2 == "" {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
