// Package emergency provides the emergency-situation heuristics applied to
// user messages.
package emergency

import "strings"

// Detector reports whether a user message describes a potential emergency.
// It is a best-effort flag for the UI, not a safety-critical gate: it never
// triggers any emergency action by itself. Implementations must be safe for
// concurrent use.
type Detector interface {
	Detect(text string) bool
}

// defaultKeywords is the fixed keyword set scanned against user messages.
var defaultKeywords = []string{
	"emergency",
	"urgent",
	"severe",
	"critical",
	"help",
	"pain",
	"bleeding",
	"cant breathe",
	"chest pain",
}

// KeywordDetector flags messages containing any of a fixed set of keywords
// as a case-insensitive substring match.
type KeywordDetector struct {
	keywords []string
}

// NewKeywordDetector creates a detector with the default medical keyword set.
func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{keywords: defaultKeywords}
}

// NewKeywordDetectorWithKeywords creates a detector with a custom keyword
// set. Keywords are matched case-insensitively.
func NewKeywordDetectorWithKeywords(keywords []string) *KeywordDetector {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &KeywordDetector{keywords: lowered}
}

// Detect reports whether text contains any keyword as a substring.
func (d *KeywordDetector) Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range d.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
