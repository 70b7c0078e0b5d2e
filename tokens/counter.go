package tokens

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Roughly 4 characters equal 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter estimates token counts for text.
type Counter interface {
	// Count returns the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit reports whether the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter estimates tokens from a character-to-token ratio.
// It counts runes rather than bytes so multi-byte text is not
// over-charged.
type EstimatingCounter struct {
	CharsPerToken float64
}

// NewEstimatingCounter creates a counter with the default ratio.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{CharsPerToken: DefaultCharsPerToken}
}

// NewEstimatingCounterWithRatio creates a counter with a custom ratio.
// A ratio <= 0 falls back to the default.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

func (c *EstimatingCounter) Count(text string) int {
	runeCount := utf8.RuneCountInString(text)
	return int(float64(runeCount)/c.CharsPerToken + 0.5)
}

func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// EncodingCounter counts tokens with a real tiktoken encoding.
type EncodingCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewEncodingCounter creates a counter for the given model. Unknown
// models fall back to the gpt-4o encoding.
func NewEncodingCounter(model string) (*EncodingCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
	}
	return &EncodingCounter{encoding: encoding}, nil
}

func (c *EncodingCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

func (c *EncodingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// EstimateTokens is a convenience function using the default estimator.
func EstimateTokens(text string) int {
	return NewEstimatingCounter().Count(text)
}

// ModelLimits holds context window sizes for common models.
var ModelLimits = map[string]int{
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,
	"gpt-4-turbo":       128000,
	"gpt-4":             8192,
	"gpt-3.5-turbo":     16385,
	"claude-3-opus":     200000,
	"claude-3-sonnet":   200000,
	"claude-3-haiku":    200000,
	"claude-3.5-sonnet": 200000,
	"claude-3.5-haiku":  200000,
	"llama-3-8b":        8192,
	"llama-3-70b":       8192,
	"mistral-7b":        32768,

	"default": 8192,
}

// GetModelLimit returns the context window size for a model, or the
// default when the model is unknown.
func GetModelLimit(model string) int {
	if limit, ok := ModelLimits[model]; ok {
		return limit
	}
	return ModelLimits["default"]
}
