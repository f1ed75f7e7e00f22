package diagai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no object", "just words", "just words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "", extractText(nil))

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "first"},
		{Type: "text", Text: ""},
		{Type: "text", Text: "second"},
	}}
	assert.Equal(t, "first\nsecond", extractText(resp))
}

func TestParseDataURL(t *testing.T) {
	mediaType, data := parseDataURL("data:image/png;base64,aGVsbG8=")
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, "aGVsbG8=", data)

	mediaType, data = parseDataURL("aGVsbG8=")
	assert.Equal(t, "", mediaType)
	assert.Equal(t, "aGVsbG8=", data)

	mediaType, data = parseDataURL("data:text/plain,hello")
	assert.Equal(t, "", mediaType)
	assert.Equal(t, "data:text/plain,hello", data)
}
