package mood

import (
	"math"
	"strings"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/gemini"
)

const (
	maxGenres   = 3
	maxKeywords = 5
)

// Tempo buckets.
const (
	TempoSlow   = "slow"
	TempoMedium = "medium"
	TempoFast   = "fast"
)

// Analysis is a normalized structured mood rating.
// Numeric fields are always within [0, 1].
type Analysis struct {
	Energy       float64  `json:"energy"`
	Valence      float64  `json:"valence"`
	Danceability float64  `json:"danceability"`
	Genres       []string `json:"genres"`
	Tempo        string   `json:"tempo"`
	Mood         string   `json:"mood"`
	Keywords     []string `json:"keywords"`
}

// normalize converts a raw model rating into an Analysis, clamping ranges and
// trimming lists. A missing label is derived from energy and valence.
func normalize(r *gemini.MoodRating) Analysis {
	a := Analysis{
		Energy:       clamp01(r.Energy),
		Valence:      clamp01(r.Valence),
		Danceability: clamp01(r.Danceability),
		Genres:       cleanList(r.Genres, maxGenres),
		Keywords:     cleanList(r.Keywords, maxKeywords),
		Mood:         strings.TrimSpace(r.Mood),
	}

	switch t := strings.ToLower(strings.TrimSpace(r.Tempo)); t {
	case TempoSlow, TempoMedium, TempoFast:
		a.Tempo = t
	default:
		a.Tempo = TempoMedium
	}

	if a.Mood == "" {
		a.Mood = Name(a.Energy, a.Valence)
	}
	return a
}

// Terms derives search terms: keywords first, then genres, without
// case-insensitive duplicates, capped at five.
func (a Analysis) Terms() []string {
	seen := make(map[string]bool)
	var terms []string
	for _, list := range [][]string{a.Keywords, a.Genres} {
		for _, t := range list {
			key := strings.ToLower(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			terms = append(terms, t)
			if len(terms) == maxTerms {
				return terms
			}
		}
	}
	return terms
}

// EnergyLevel returns the energy bucket of the analysis.
func (a Analysis) EnergyLevel() string {
	return EnergyLevel(a.Energy)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// cleanList trims entries, drops blanks and truncates to limit.
func cleanList(in []string, limit int) []string {
	out := make([]string, 0, min(len(in), limit))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
