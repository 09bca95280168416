package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/animation-agent/internal/llm"
)

// fakeClient returns a canned reply or error for GenerateJSON.
type fakeClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestGenerate_Success(t *testing.T) {
	client := &fakeClient{
		reply: `{"code": "from manim import *\nclass Hello(Scene):\n    def construct(self):\n        pass", "scene_class": "Hello"}`,
	}
	gen := NewLLMGenerator(client)

	src, err := gen.Generate(context.Background(), "a bouncing ball")
	require.NoError(t, err)
	assert.Contains(t, src.Code, "class Hello(Scene)")
	assert.Equal(t, "Hello", src.SceneClass)

	// The user prompt and the allow-lists are injected into the template.
	assert.Contains(t, client.lastPrompt, "a bouncing ball")
	assert.Contains(t, client.lastPrompt, "VGroup")
	assert.Contains(t, client.lastPrompt, "to_edge")
	assert.NotContains(t, client.lastPrompt, "{{.Prompt}}")
}

func TestGenerate_LLMFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	gen := NewLLMGenerator(client)

	_, err := gen.Generate(context.Background(), "anything")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "llm", genErr.Stage)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestParseReply_FencedJSON(t *testing.T) {
	reply := "```json\n{\"code\": \"from manim import *\"}\n```"
	src, err := ParseReply(reply)
	require.NoError(t, err)
	assert.Equal(t, "from manim import *", src.Code)
}

func TestParseReply_NotJSON(t *testing.T) {
	_, err := ParseReply("here is your code: print('hi')")
	require.Error(t, err)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "parse", genErr.Stage)
}

func TestParseReply_SchemaViolations(t *testing.T) {
	testCases := []struct {
		name  string
		reply string
	}{
		{"missing code", `{"scene_class": "Hello"}`},
		{"empty code", `{"code": ""}`},
		{"wrong type", `{"code": 42}`},
		{"extra field", `{"code": "x", "shell": "rm -rf /"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReply(tc.reply)
			require.Error(t, err)
			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, "schema", genErr.Stage)
		})
	}
}
