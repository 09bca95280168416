package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFencedBlock(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fence", `{"code": "x"}`, `{"code": "x"}`},
		{"json fence", "```json\n{\"code\": \"x\"}\n```", `{"code": "x"}`},
		{"python fence", "```python\nfrom manim import *\n```", "from manim import *"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
		{"fence without newline", "``````", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanFencedBlock(tc.input))
		})
	}
}
