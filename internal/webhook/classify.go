package webhook

import (
	"strings"
	"unicode"
)

// Categories for the envelope "object" field.
const (
	CategoryInstagram = "Instagram"
	CategoryPage      = "Facebook Page"
	CategoryUnknown   = "Unknown"
)

var objectCategories = map[string]string{
	"instagram": CategoryInstagram,
	"page":      CategoryPage,
}

// Classify derives a display category from a decoded delivery envelope:
//
//	{"object": "instagram", "entry": [{"messaging": [...]}]}      -> "Instagram - Messages"
//	{"object": "page", "entry": [{"changes": [{"field": "feed"}]}]} -> "Facebook Page - Feed"
//
// Anything absent or of an unexpected type is treated as not present. A body
// that is not a JSON object classifies as "Unknown".
func Classify(body any) string {
	envelope, ok := body.(map[string]any)
	if !ok {
		return CategoryUnknown
	}

	category := CategoryUnknown
	if object, ok := envelope["object"].(string); ok {
		if c, known := objectCategories[object]; known {
			category = c
		}
	}

	entry, ok := firstObject(envelope["entry"])
	if !ok {
		return category
	}

	if _, ok := entry["messaging"]; ok {
		return category + " - Messages"
	}

	if _, ok := entry["changes"]; ok {
		change, ok := firstObject(entry["changes"])
		if !ok {
			return category
		}
		field, _ := change["field"].(string)
		return category + " - " + titleCase(field)
	}

	return category
}

// firstObject returns v[0] when v is a non-empty list whose first element is
// an object.
func firstObject(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	obj, ok := list[0].(map[string]any)
	return obj, ok
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "story_insights" becomes "Story_Insights".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
