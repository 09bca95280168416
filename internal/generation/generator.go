// Package generation turns a natural-language animation request into Manim
// source via the LLM, validating the structured reply before anything
// downstream sees it.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/animation-agent/internal/llm"
	"github.com/jonathan/animation-agent/internal/prompts"
)

// AllowedClasses lists the Manim classes generated code may use. The list is
// injected into the prompt; the static validator enforces the import surface.
var AllowedClasses = []string{
	"Scene", "Text", "Circle", "Square", "Rectangle", "Triangle",
	"Arrow", "Line", "Dot", "VGroup", "MathTex", "Tex",
	"Write", "FadeIn", "FadeOut", "GrowFromCenter", "Transform",
	"Create", "Uncreate", "DrawBorderThenFill",
}

// AllowedMethods lists the Manim methods generated code may call.
var AllowedMethods = []string{
	"play", "wait", "add", "remove", "clear", "get_center",
	"shift", "scale", "rotate", "flip", "move_to", "next_to",
	"to_edge", "to_corner", "align_to", "arrange",
}

// Source is the validated output of a generation run.
type Source struct {
	// Code is the complete Python source for the animation.
	Code string `json:"code"`
	// SceneClass is the Scene subclass the model claims to have defined.
	// The static validator re-derives it; this field is advisory.
	SceneClass string `json:"scene_class"`
}

// Generator produces animation source from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Source, error)
}

// LLMGenerator implements Generator on top of an llm.Client.
type LLMGenerator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMGenerator creates a generator backed by the given client. Code
// generation uses the advanced tier.
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{
		client: client,
		tier:   llm.TierAdvanced,
	}
}

// Generate asks the model for animation source and parses the structured
// reply. Every failure is wrapped in a GenerationError so the orchestrator
// can record it as a terminal job failure.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (Source, error) {
	template, err := prompts.Get("codegen.json", "generate_animation_code")
	if err != nil {
		return Source{}, &GenerationError{Stage: "prompt", Cause: err}
	}

	formatted := prompts.Format(template, map[string]string{
		"AllowedClasses": strings.Join(AllowedClasses, ", "),
		"AllowedMethods": strings.Join(AllowedMethods, ", "),
		"Prompt":         prompt,
	})

	reply, err := g.client.GenerateJSON(ctx, formatted, g.tier)
	if err != nil {
		return Source{}, &GenerationError{Stage: "llm", Cause: err}
	}

	return ParseReply(reply)
}

// ParseReply validates a raw model reply against the reply schema and decodes
// it into a Source. Exposed separately so tests and the CLI can exercise it
// without a live model.
func ParseReply(reply string) (Source, error) {
	cleaned := llm.CleanFencedBlock(reply)

	if err := validateReplySchema(cleaned); err != nil {
		return Source{}, err
	}

	var src Source
	if err := json.Unmarshal([]byte(cleaned), &src); err != nil {
		return Source{}, &GenerationError{
			Stage: "parse",
			Cause: fmt.Errorf("failed to decode model reply: %w", err),
		}
	}
	return src, nil
}
