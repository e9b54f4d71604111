package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/six7/six7-node/pkg/fabric"
	"github.com/six7/six7-node/pkg/protocol"
)

func runPubSub(tc *testClient, msgs ...fabric.Message) {
	for _, m := range msgs {
		tc.node.msgs <- m
	}
	close(tc.node.msgs)
	done := make(chan struct{})
	go func() {
		tc.RunPubSub()
		close(done)
	}()
	<-done
}

func TestPubSubStructuredMessage(t *testing.T) {
	tc := newTestClient("me", "lobby")

	gm := protocol.NewGroupText("hi", "lobby")
	runPubSub(tc, fabric.Message{
		Topic: "chat/lobby",
		From:  peerIdentity,
		Data:  protocol.EncodeGroup(gm),
	})

	// First structured message from an unseen peer displays its prefix in
	// place of a name.
	prefix := peerIdentity[:8]
	assert.Contains(t, tc.output(), prefix+"@"+prefix+": hi")

	name, ok := tc.Peers().Lookup(prefix)
	require.True(t, ok)
	assert.Equal(t, prefix, name)
}

func TestPubSubLegacyText(t *testing.T) {
	tc := newTestClient("me", "lobby")

	runPubSub(tc, fabric.Message{
		Topic: "chat/lobby",
		From:  peerIdentity,
		Data:  []byte("alice@ffeeddcc: hello there"),
	})

	assert.Contains(t, tc.output(), "alice@ffeeddcc: hello there")

	name, ok := tc.Peers().Lookup(peerIdentity[:8])
	require.True(t, ok)
	assert.Equal(t, "alice", name, "legacy name should be registered")
}

func TestPubSubFilters(t *testing.T) {
	tc := newTestClient("me", "lobby")

	gm := protocol.NewGroupText("should not appear", "lobby")
	runPubSub(tc,
		// Oversized payload.
		fabric.Message{Topic: "chat/lobby", From: peerIdentity, Data: make([]byte, protocol.MaxMessageSize+1)},
		// Wrong topic.
		fabric.Message{Topic: "chat/other", From: peerIdentity, Data: protocol.EncodeGroup(gm)},
		// Self echo.
		fabric.Message{Topic: "chat/lobby", From: testIdentity, Data: protocol.EncodeGroup(gm)},
	)

	assert.Empty(t, tc.output())
	assert.Zero(t, tc.Peers().Len())
}

func TestPubSubSanitizesControlChars(t *testing.T) {
	tc := newTestClient("me", "lobby")

	gm := protocol.NewGroupText("safe\x1b[31mnot\x07", "lobby")
	runPubSub(tc, fabric.Message{
		Topic: "chat/lobby",
		From:  peerIdentity,
		Data:  protocol.EncodeGroup(gm),
	})

	out := tc.output()
	assert.Contains(t, out, "safe[31mnot")
	// The payload's own escape byte is stripped; only the rendering
	// prefix carries ANSI codes.
	assert.Equal(t, 2, strings.Count(out, "\x1b"), "escape bytes from payload should be stripped")
}

func TestPubSubRegistryFirstNameWins(t *testing.T) {
	tc := newTestClient("me", "lobby")

	runPubSub(tc,
		fabric.Message{Topic: "chat/lobby", From: peerIdentity, Data: []byte("alice@ffeeddcc: one")},
		fabric.Message{Topic: "chat/lobby", From: peerIdentity, Data: []byte("eve@ffeeddcc: two")},
	)

	name, ok := tc.Peers().Lookup(peerIdentity[:8])
	require.True(t, ok)
	assert.Equal(t, "alice", name)
}
