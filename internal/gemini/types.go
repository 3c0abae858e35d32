package gemini

// MoodRating is the structured mood analysis requested from the model.
// Values are returned as the model produced them; callers normalize ranges.
type MoodRating struct {
	Energy       float64  `json:"energy"`
	Valence      float64  `json:"valence"`
	Danceability float64  `json:"danceability"`
	Genres       []string `json:"genres"`
	Tempo        string   `json:"tempo"`
	Mood         string   `json:"mood"`
	Keywords     []string `json:"keywords"`
}

// generateRequest is the body of models/{model}:generateContent.
type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      *float64       `json:"temperature,omitempty"`
}

// generateResponse is the subset of the generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// apiError is the error envelope returned on non-2xx responses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// moodRatingSchema constrains the analysis response.
var moodRatingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"energy":       map[string]any{"type": "number"},
		"valence":      map[string]any{"type": "number"},
		"danceability": map[string]any{"type": "number"},
		"genres":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"tempo":        map[string]any{"type": "string", "enum": []string{"slow", "medium", "fast"}},
		"mood":         map[string]any{"type": "string"},
		"keywords":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"energy", "valence", "danceability", "genres", "tempo", "mood", "keywords"},
}

// searchTermsSchema constrains the term-list response.
var searchTermsSchema = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}
