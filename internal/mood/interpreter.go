// Package mood turns free-text mood descriptions into catalog search terms,
// using an AI model when available and a fixed keyword table otherwise.
package mood

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/apperr"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/gemini"
	"github.com/ALOK-SINGH-CHAUHAN/VibeTunes/internal/result"
)

// Mode selects what the AI is asked for.
type Mode string

const (
	// ModeAnalysis requests a structured rating and derives terms from it.
	ModeAnalysis Mode = "analysis"
	// ModeTerms requests a bare list of search terms.
	ModeTerms Mode = "terms"
)

// AI abstracts the model client for testing.
type AI interface {
	AnalyzeMood(ctx context.Context, mood string) (*gemini.MoodRating, error)
	SuggestTerms(ctx context.Context, mood string) ([]string, error)
}

// Interpretation is the outcome of interpreting one mood.
type Interpretation struct {
	Terms []string `json:"terms"`
	// Analysis is set only when the structured AI path succeeded.
	Analysis      *Analysis `json:"analysis,omitempty"`
	UsingFallback bool      `json:"usingFallback"`
	// Diagnostic explains why the fallback was used.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Interpreter maps mood text to search terms.
type Interpreter struct {
	ai   AI
	mode Mode
	log  *zap.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMode sets the AI request mode.
func WithMode(m Mode) Option {
	return func(i *Interpreter) {
		if m == ModeAnalysis || m == ModeTerms {
			i.mode = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(i *Interpreter) {
		if log != nil {
			i.log = log
		}
	}
}

// NewInterpreter creates an Interpreter. ai may be nil, in which case every
// call uses the fallback table.
func NewInterpreter(ai AI, opts ...Option) *Interpreter {
	i := &Interpreter{
		ai:   ai,
		mode: ModeAnalysis,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret never fails. When the AI path is unavailable or returns something
// unusable the result is Degraded and carries fallback terms. The AI call is
// made at most once.
func (i *Interpreter) Interpret(ctx context.Context, text string) result.Result[Interpretation] {
	if i.ai == nil {
		return i.fallback(text, apperr.Config("mood.interpret", "AI client not configured"))
	}

	var (
		interp Interpretation
		err    error
	)
	switch i.mode {
	case ModeTerms:
		interp, err = i.suggest(ctx, text)
	default:
		interp, err = i.analyze(ctx, text)
	}
	if err != nil {
		return i.fallback(text, err)
	}

	i.log.Debug("interpreted mood with AI",
		zap.String("mode", string(i.mode)),
		zap.Strings("terms", interp.Terms))
	return result.Ok(interp)
}

func (i *Interpreter) analyze(ctx context.Context, text string) (Interpretation, error) {
	rating, err := i.ai.AnalyzeMood(ctx, text)
	if err != nil {
		return Interpretation{}, err
	}
	if rating == nil {
		return Interpretation{}, apperr.Parse("mood.analyze", "empty analysis", nil)
	}

	a := normalize(rating)
	terms := a.Terms()
	if len(terms) == 0 {
		return Interpretation{}, apperr.Parse("mood.analyze", "analysis had no keywords or genres", nil)
	}
	return Interpretation{Terms: terms, Analysis: &a}, nil
}

func (i *Interpreter) suggest(ctx context.Context, text string) (Interpretation, error) {
	raw, err := i.ai.SuggestTerms(ctx, text)
	if err != nil {
		return Interpretation{}, err
	}

	terms := cleanList(raw, maxTerms)
	if len(terms) == 0 {
		return Interpretation{}, apperr.Parse("mood.suggest", "AI returned no usable terms", nil)
	}
	return Interpretation{Terms: terms}, nil
}

func (i *Interpreter) fallback(text string, cause error) result.Result[Interpretation] {
	diagnostic := describe(cause)
	i.log.Info("using fallback mood interpretation",
		zap.String("kind", apperr.KindOf(cause).String()),
		zap.Error(cause))

	interp := Interpretation{
		Terms:         FallbackTerms(text),
		UsingFallback: true,
		Diagnostic:    diagnostic,
	}
	return result.Degraded(interp, diagnostic, cause)
}

// describe turns an AI failure into a short diagnostic message.
func describe(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindConfig:
		return "AI service not configured"
	case apperr.KindParse:
		return "AI response could not be parsed"
	}

	switch {
	case errors.Is(err, gemini.ErrRegionUnsupported):
		return "AI service not available in this region"
	case errors.Is(err, gemini.ErrQuotaExceeded):
		return "AI service quota exceeded"
	case errors.Is(err, gemini.ErrModelNotFound):
		return "AI model not found"
	default:
		return "AI service unavailable"
	}
}
