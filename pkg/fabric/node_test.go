package fabric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRespondOnce(t *testing.T) {
	req, reply := NewRequest("ab12cd34", []byte("hello"))

	assert.True(t, req.Respond([]byte("first")))
	assert.False(t, req.Respond([]byte("second")), "second response must be rejected")

	select {
	case got := <-reply:
		assert.Equal(t, []byte("first"), got)
	default:
		require.Fail(t, "response not delivered")
	}
}
