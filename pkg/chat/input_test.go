package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	ch := Lines(strings.NewReader("first\nsecond\n\nthird"))

	var got []string
	for line := range ch {
		got = append(got, line)
	}
	assert.Equal(t, []string{"first", "second", "", "third"}, got)
}
