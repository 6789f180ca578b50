package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/promptkit/pkg/sanitizer"
)

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "surrounding spaces", input: "  Renamed ", want: "Renamed"},
		{name: "line breaks", input: "Blog\npost\r\nideas", want: "Blog post ideas"},
		{name: "tabs and runs", input: "Blog \t  post", want: "Blog post"},
		{name: "control characters", input: "Blog\x00 post\x1b", want: "Blog post"},
		{name: "blank", input: " \n\t ", want: ""},
		{name: "unicode kept", input: " Résumé prompt ", want: "Résumé prompt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.Title(tt.input))
		})
	}
}

func TestStripControl(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "line one\nline\ttwo", sanitizer.StripControl("line one\n\x07line\ttwo\x7f"))
}

func TestApply(t *testing.T) {
	t.Parallel()
	got := sanitizer.Apply("  Hello ", sanitizer.Trim, strings.ToLower)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "as is", sanitizer.Apply("as is"))
}
