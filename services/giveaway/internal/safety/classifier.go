package safety

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Verdict is a classifier's answer for one image. Reason is set when the
// image is unsafe.
type Verdict struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason"`
}

type Classifier interface {
	Classify(ctx context.Context, image string) (Verdict, error)
}

const moderationSystemPrompt = `You are a content moderation AI. Analyze this image and determine if it's appropriate for a community marketplace app where people give away unwanted household items.

REJECT images that contain:
- Sexual or adult content
- Nudity or suggestive content
- Violence or gore
- Illegal items (drugs, weapons, stolen goods)
- Dangerous items that could harm others
- Explicit or offensive content

APPROVE images that show:
- Household items, furniture, electronics
- Clothing, toys, books, sports equipment
- Garden items, tools, appliances
- Any normal item someone might give away

Respond ONLY with JSON:
{"safe": true/false, "reason": "brief reason if unsafe"}`

const moderationPrompt = "Is this image safe and appropriate for a community item giveaway app?"

var (
	jsonObject = regexp.MustCompile(`\{[^{}]*\}`)

	errNoVerdict = errors.New("classifier answer has no verdict")
)

// LLMClassifier asks a model for a JSON verdict.
type LLMClassifier struct {
	prompter Prompter
}

func NewLLMClassifier(prompter Prompter) *LLMClassifier {
	return &LLMClassifier{prompter: prompter}
}

func (c *LLMClassifier) Classify(ctx context.Context, image string) (Verdict, error) {
	data, mimeType, err := decodeImage(image)
	if err != nil {
		return Verdict{}, err
	}

	answer, err := c.prompter.Prompt(ctx, moderationSystemPrompt, moderationPrompt, data, mimeType)
	if err != nil {
		return Verdict{}, err
	}
	return parseVerdict(answer)
}

func parseVerdict(answer string) (Verdict, error) {
	raw := jsonObject.FindString(answer)
	if raw == "" {
		return Verdict{}, errNoVerdict
	}

	var parsed struct {
		Safe   *bool  `json:"safe"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Verdict{}, err
	}
	if parsed.Safe == nil {
		return Verdict{}, errNoVerdict
	}

	verdict := Verdict{Safe: *parsed.Safe, Reason: strings.TrimSpace(parsed.Reason)}
	if !verdict.Safe && verdict.Reason == "" {
		verdict.Reason = "inappropriate content"
	}
	return verdict, nil
}

// AllowAllClassifier approves everything. It stands in when no model is
// configured.
type AllowAllClassifier struct{}

func (AllowAllClassifier) Classify(context.Context, string) (Verdict, error) {
	return Verdict{Safe: true}, nil
}
