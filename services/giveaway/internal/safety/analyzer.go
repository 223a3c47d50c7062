package safety

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ucycle/pkg/logger"
	"ucycle/services/giveaway/internal/entity"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Suggestion is a drafted listing for an uploaded photo.
type Suggestion struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

var FallbackSuggestion = Suggestion{
	Title:       "Free Item",
	Category:    entity.CategoryGeneral,
	Description: "Please add your own description",
}

const (
	precheckSystemPrompt = "You are a content safety checker. Analyze images for prohibited content."
	precheckPrompt       = "Does this image contain any of the following: nudity, sexual content, weapons, drugs, violence, or illegal activity? Reply with ONLY 'SAFE' or 'UNSAFE'."

	analyzeSystemPrompt = `You are a helpful assistant that identifies items in photos for a free stuff giveaway app.

When you see an image, provide:
1. A specific, descriptive Title for the item (be precise - what exactly is it?)
2. A Category from: furniture, electronics, appliances, sports, toys, books, clothing, garden, kitchen, tools, e-waste, scrap-metal, cardboard, general
3. A helpful Description of the item's condition and any notable features

Respond in JSON format:
{"title": "...", "category": "...", "description": "..."}`
	analyzePrompt = "Analyze this image. What item is this? Provide a natural Title and a helpful Description."

	analyzerCacheSize = 256
)

var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Analyzer drafts a title, category and description for a photo. It is an
// assist only; nothing it returns gates storage.
type Analyzer struct {
	prompter Prompter
	cache    *lru.Cache[string, Suggestion]
	logger   *logger.Logger
}

func NewAnalyzer(prompter Prompter, log *logger.Logger) *Analyzer {
	cache, err := newSuggestionCache(analyzerCacheSize)
	if err != nil {
		panic(err)
	}
	return &Analyzer{prompter: prompter, cache: cache, logger: log}
}

func newSuggestionCache(size int) (*lru.Cache[string, Suggestion], error) {
	cache, err := lru.New[string, Suggestion](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion cache: %w", err)
	}
	return cache, nil
}

// Analyze returns a ContentRejectedError when the pre-check flags the image
// and the fallback suggestion on any other failure.
func (a *Analyzer) Analyze(ctx context.Context, image string) (Suggestion, error) {
	if a.prompter == nil {
		return FallbackSuggestion, nil
	}

	data, mimeType, err := decodeImage(image)
	if err != nil {
		a.logger.Warn("[ANALYZE] %v", err)
		return FallbackSuggestion, nil
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := a.cache.Get(key); ok {
		return cached, nil
	}

	answer, err := a.prompter.Prompt(ctx, precheckSystemPrompt, precheckPrompt, data, mimeType)
	if err != nil {
		a.logger.Warn("[ANALYZE] pre-check failed: %v", err)
		return FallbackSuggestion, nil
	}
	if strings.Contains(strings.ToUpper(answer), "UNSAFE") {
		return Suggestion{}, &entity.ContentRejectedError{Position: 1, Reason: "inappropriate content detected"}
	}

	answer, err = a.prompter.Prompt(ctx, analyzeSystemPrompt, analyzePrompt, data, mimeType)
	if err != nil {
		a.logger.Warn("[ANALYZE] analysis failed: %v", err)
		return FallbackSuggestion, nil
	}

	suggestion, ok := parseSuggestion(answer)
	if !ok {
		a.logger.Warn("[ANALYZE] unparsable answer: %q", answer)
		return FallbackSuggestion, nil
	}

	a.cache.Add(key, suggestion)
	return suggestion, nil
}

func parseSuggestion(answer string) (Suggestion, bool) {
	text := strings.TrimSpace(answer)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if obj := jsonObject.FindString(text); obj != "" {
		text = obj
	}

	var parsed struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Suggestion{}, false
	}

	s := Suggestion{
		Title:       strings.TrimSpace(parsed.Title),
		Category:    entity.NormalizeCategory(parsed.Category),
		Description: strings.TrimSpace(parsed.Description),
	}
	if s.Title == "" {
		s.Title = FallbackSuggestion.Title
	}
	if s.Description == "" {
		s.Description = "Available for pickup"
	}
	return s, true
}
