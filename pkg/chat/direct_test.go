package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/six7/six7-node/pkg/fabric"
	"github.com/six7/six7-node/pkg/protocol"
)

func runDirect(tc *testClient, payloads ...[]byte) []<-chan []byte {
	replies := make([]<-chan []byte, 0, len(payloads))
	for _, p := range payloads {
		req, reply := fabric.NewRequest(peerIdentity, p)
		tc.node.reqs <- req
		replies = append(replies, reply)
	}
	close(tc.node.reqs)
	done := make(chan struct{})
	go func() {
		tc.RunDirect()
		close(done)
	}()
	<-done
	return replies
}

func takeReply(t *testing.T, reply <-chan []byte) []byte {
	t.Helper()
	select {
	case data := <-reply:
		return data
	default:
		t.Fatal("no reply delivered")
		return nil
	}
}

func TestDirectTextMessageAcked(t *testing.T) {
	tc := newTestClient("me", "lobby")

	dm := protocol.NewTextMessage("hello")
	replies := runDirect(tc, protocol.EncodeDirect(dm))

	assert.Contains(t, tc.output(), "[dm ← "+peerIdentity[:8]+"]")
	assert.Contains(t, tc.output(), "hello")

	ack, err := protocol.DecodeAck(takeReply(t, replies[0]))
	require.NoError(t, err)
	assert.True(t, ack.Ack)
}

func TestDirectTaggedKinds(t *testing.T) {
	tests := []struct {
		name    string
		dm      *protocol.DirectMessage
		wantTag string
	}{
		{"contact request", protocol.NewContactRequest("Alice"), "[contact request]"},
		{"contact accepted", protocol.NewContactAccepted("Bob"), "[contact accepted]"},
		{"read receipt", protocol.NewReadReceipt([]string{"m1", "m2"}), "[read receipt]"},
		{"group invite", protocol.NewDirectMessage("{}", protocol.KindGroupInvite), "[group invite]"},
		{"vibe", protocol.NewDirectMessage("x", protocol.KindVibe), "[vibe]"},
		{"profile update", protocol.NewDirectMessage("x", protocol.KindProfileUpdate), "[profile update]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClient("me", "lobby")
			replies := runDirect(tc, protocol.EncodeDirect(tt.dm))

			assert.Contains(t, tc.output(), tt.wantTag)

			ack, err := protocol.DecodeAck(takeReply(t, replies[0]))
			require.NoError(t, err)
			assert.True(t, ack.Ack)
		})
	}
}

func TestDirectUnknownKindStillAcked(t *testing.T) {
	tc := newTestClient("me", "lobby")

	dm := protocol.NewDirectMessage("mystery", protocol.KindFromTag("hologram"))
	replies := runDirect(tc, protocol.EncodeDirect(dm))

	assert.Contains(t, tc.output(), "[hologram]")
	assert.Contains(t, tc.output(), "mystery")

	ack, err := protocol.DecodeAck(takeReply(t, replies[0]))
	require.NoError(t, err)
	assert.True(t, ack.Ack)
}

func TestDirectUndecodablePayloadGetsLegacyAck(t *testing.T) {
	tc := newTestClient("me", "lobby")

	replies := runDirect(tc, []byte("just some old plain text"))

	assert.Contains(t, tc.output(), "just some old plain text")
	assert.Equal(t, []byte(protocol.LegacyAckToken), takeReply(t, replies[0]))
}

func TestDirectOversizedDroppedWithoutReply(t *testing.T) {
	tc := newTestClient("me", "lobby")

	replies := runDirect(tc, make([]byte, protocol.MaxMessageSize+1))

	assert.Empty(t, tc.output())
	select {
	case <-replies[0]:
		t.Fatal("oversized request must not be answered")
	default:
	}
}

func TestDirectExactlyOneReplyPerRequest(t *testing.T) {
	tc := newTestClient("me", "lobby")

	replies := runDirect(tc,
		protocol.EncodeDirect(protocol.NewTextMessage("one")),
		[]byte("legacy two"),
	)

	for i, reply := range replies {
		takeReply(t, reply)
		select {
		case <-reply:
			t.Fatalf("request %d answered more than once", i)
		default:
		}
	}
}
