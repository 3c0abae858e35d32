package mood

import "strings"

const maxTerms = 5

// category maps a mood keyword to catalog search terms.
type category struct {
	name  string
	terms []string
}

// categories is matched in order against the lower-cased mood text.
var categories = []category{
	{name: "happy", terms: []string{"happy", "upbeat", "joyful", "cheerful", "positive"}},
	{name: "sad", terms: []string{"sad", "melancholy", "emotional", "heartbreak", "tears"}},
	{name: "energetic", terms: []string{"energetic", "workout", "gym", "exercise", "high energy"}},
	{name: "relaxing", terms: []string{"relaxing", "chill", "calm", "peaceful", "meditation"}},
	{name: "focus", terms: []string{"focus", "study", "concentration", "work", "productivity"}},
	{name: "romantic", terms: []string{"romantic", "love", "romance", "valentine", "intimate"}},
	{name: "party", terms: []string{"party", "dance", "club", "celebration", "festive"}},
	{name: "nostalgic", terms: []string{"nostalgic", "retro", "vintage", "memories", "classic"}},
	{name: "angry", terms: []string{"angry", "rage", "aggressive", "heavy", "intense"}},
	{name: "sleepy", terms: []string{"sleepy", "lullaby", "bedtime", "sleep", "ambient"}},
}

// genericTerms is used when no category matches.
var genericTerms = []string{"mood", "vibe", "feeling"}

// FallbackTerms derives search terms from the mood text without any network
// call. Each matching category contributes its first two terms, in table
// order. The result is never empty and holds at most five terms.
func FallbackTerms(text string) []string {
	lower := strings.ToLower(text)

	var terms []string
	for _, c := range categories {
		if strings.Contains(lower, c.name) {
			terms = append(terms, c.terms[:2]...)
		}
	}

	if len(terms) == 0 {
		terms = append(terms, genericTerms...)
	}

	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	return terms
}

// categoryTerms returns the full term list for a category name, or nil.
func categoryTerms(name string) []string {
	for _, c := range categories {
		if c.name == name {
			return append([]string(nil), c.terms...)
		}
	}
	return nil
}
