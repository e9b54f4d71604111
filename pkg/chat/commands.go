package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/six7/six7-node/pkg/protocol"
	"github.com/six7/six7-node/pkg/registry"
)

// RunCommands is the dispatcher loop. It consumes trimmed operator lines
// until /quit or the input channel closes. Per-command errors are
// reported inline and never end the loop.
func (c *Client) RunCommands(lines <-chan string) {
	for line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !c.dispatch(line) {
			return
		}
	}
}

// dispatch handles one line and reports whether the loop should continue.
func (c *Client) dispatch(line string) bool {
	switch {
	case line == "/quit":
		c.printf("Goodbye!")
		return false
	case line == "/help":
		c.PrintHelp()
	case line == "/peers":
		c.cmdPeers()
	case line == "/list":
		c.cmdList()
	case line == "/fabric":
		c.cmdFabric()
	case line == "/routing":
		c.cmdRouting()
	case line == "/dht":
		c.cmdDHT()
	case line == "/telemetry":
		c.cmdTelemetry()
	case strings.HasPrefix(line, "/dm "):
		c.cmdDM(line)
	case strings.HasPrefix(line, "/contact "):
		c.cmdContact(line)
	case strings.HasPrefix(line, "/invite "):
		c.cmdInvite(line)
	case strings.HasPrefix(line, "/vibe "):
		c.cmdVibe(line)
	case line == "/reveal":
		c.cmdReveal()
	case strings.HasPrefix(line, "/"):
		c.printf("Unknown command. Type /help for available commands.")
	default:
		c.cmdBroadcast(line)
	}
	return true
}

func (c *Client) cmdPeers() {
	peers := c.peers.List()
	if len(peers) == 0 {
		c.printf("No peers discovered yet.")
		return
	}
	c.printf("Known peers:")
	for _, p := range peers {
		c.printf("  %s (%s)", p.Name, p.Prefix)
	}
}

// validPeerIdentity checks the identity argument of a direct command
// before any network call is made.
func (c *Client) validPeerIdentity(identity string) bool {
	if !protocol.ValidIdentity(identity) {
		c.printf("Invalid identity. Must be %d hex characters.", protocol.IdentityLength)
		return false
	}
	return true
}

// sendResult classifies the bytes a peer returned for a direct send.
type sendResult int

const (
	ackConfirmed sendResult = iota // structured ack with ack=true
	ackLegacy                      // legacy plain-bytes token
	ackAmbiguous                   // anything else; not a failure
)

func classifyAck(response []byte) sendResult {
	if ack, err := protocol.DecodeAck(response); err == nil && ack.Ack {
		return ackConfirmed
	}
	if string(response) == protocol.LegacyAckToken {
		return ackLegacy
	}
	return ackAmbiguous
}

// sendDirect encodes and sends one direct message with the client-side
// timeout. A timeout is reported as the distinct unreachable condition,
// never conflated with a transport error.
func (c *Client) sendDirect(identity string, dm *protocol.DirectMessage) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	defer cancel()

	response, err := c.node.Send(ctx, identity, protocol.EncodeDirect(dm))
	if err == nil {
		return response, true
	}
	label := "dm error"
	if dm.Kind() == protocol.KindContactRequest {
		label = "contact error"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.printf("%s[%s]%s Timeout: peer unreachable", colRed, label, colReset)
	} else {
		c.printf("%s[%s]%s Failed to send: %v", colRed, label, colReset, err)
	}
	return nil, false
}

func (c *Client) cmdDM(line string) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		c.printf("Usage: /dm <identity_hex> <message>")
		return
	}
	identity, message := parts[1], parts[2]

	if len(message) > protocol.MaxMessageSize {
		c.printf("Message too large (max %d bytes)", protocol.MaxMessageSize)
		return
	}
	if !c.validPeerIdentity(identity) {
		return
	}

	response, ok := c.sendDirect(identity, protocol.NewTextMessage(message))
	if !ok {
		return
	}

	mark := "?"
	if r := classifyAck(response); r == ackConfirmed || r == ackLegacy {
		mark = "✓"
	}
	c.printf("%s[dm → %s]%s %s [%s]", colYellow, registry.Prefix(identity), colReset, message, mark)
}

func (c *Client) cmdContact(line string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) < 2 {
		c.printf("Usage: /contact <identity_hex>")
		return
	}
	identity := parts[1]
	if !c.validPeerIdentity(identity) {
		return
	}

	response, ok := c.sendDirect(identity, protocol.NewContactRequest(c.cfg.Name))
	if !ok {
		return
	}

	status := "sent (legacy peer)"
	if classifyAck(response) == ackConfirmed {
		status = "sent"
	}
	c.printf("%s[contact → %s]%s %s [%s]", colCyan, registry.Prefix(identity), colReset, c.cfg.Name, status)
}

func (c *Client) cmdInvite(line string) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		c.printf("Usage: /invite <identity_hex> <group name>")
		return
	}
	identity, groupName := parts[1], parts[2]
	if !c.validPeerIdentity(identity) {
		return
	}

	invite := &protocol.GroupInvitePayload{
		GroupID:     uuid.NewString(),
		Name:        groupName,
		MemberIDs:   []string{c.identity, identity},
		MemberNames: map[string]string{c.identity: c.cfg.Name},
		CreatorID:   c.identity,
		CreatedAtMs: protocol.NowUnixMilli(),
	}
	payload, err := invite.Encode()
	if err != nil {
		c.printf("%s[invite error]%s Failed to encode invite: %v", colRed, colReset, err)
		return
	}

	dm := protocol.NewDirectMessage(string(payload), protocol.KindGroupInvite)
	response, ok := c.sendDirect(identity, dm)
	if !ok {
		return
	}

	status := "sent (legacy peer)"
	if classifyAck(response) == ackConfirmed {
		status = "sent"
	}
	c.printf("%s[invite → %s]%s %s [%s]", colCyan, registry.Prefix(identity), colReset, groupName, status)
}

func (c *Client) cmdVibe(line string) {
	_, secret, _ := strings.Cut(line, " ")
	secret = strings.TrimSpace(secret)
	if secret == "" {
		c.printf("Usage: /vibe <secret>")
		return
	}

	state := &vibeState{id: protocol.RandomID(), secret: secret}
	payload, err := protocol.EncodeVibePayload(protocol.VibeCommitment{
		VibeID:     state.id,
		Commitment: protocol.CommitmentFor(secret),
	})
	if err != nil {
		c.printf("%s[vibe error]%s Failed to encode commitment: %v", colRed, colReset, err)
		return
	}

	if err := c.publish(protocol.TopicVibes, payload); err != nil {
		c.printf("%s[vibe error]%s Failed to publish: %v", colRed, colReset, err)
		return
	}
	c.pendingVibe = state
	c.printf("Vibe commitment published (id %s). Use /reveal to disclose.", protocol.ShortID(state.id))
}

func (c *Client) cmdReveal() {
	if c.pendingVibe == nil {
		c.printf("No pending vibe. Publish one with /vibe <secret> first.")
		return
	}

	payload, err := protocol.EncodeVibePayload(protocol.VibeReveal{
		VibeID: c.pendingVibe.id,
		Secret: c.pendingVibe.secret,
	})
	if err != nil {
		c.printf("%s[vibe error]%s Failed to encode reveal: %v", colRed, colReset, err)
		return
	}

	if err := c.publish(protocol.TopicVibes, payload); err != nil {
		c.printf("%s[vibe error]%s Failed to publish: %v", colRed, colReset, err)
		return
	}
	c.printf("Vibe revealed (id %s).", protocol.ShortID(c.pendingVibe.id))
	c.pendingVibe = nil
}

func (c *Client) cmdBroadcast(line string) {
	if len(line) > protocol.MaxMessageSize {
		c.printf("Message too large (max %d bytes)", protocol.MaxMessageSize)
		return
	}

	gm := protocol.NewGroupText(line, c.cfg.Room)
	if err := c.publish(c.topic, protocol.EncodeGroup(gm)); err != nil {
		c.printf("Failed to send message: %v", err)
		return
	}

	// Echo the outgoing line locally; the pubsub consumer suppresses the
	// network copy of our own broadcast.
	formatted := c.cfg.Name + "@" + c.prefix + ": " + line
	c.printf("%s[room]%s %s", colGreen, colReset, protocol.SanitizeText(formatted))
}

func (c *Client) publish(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	defer cancel()
	return c.node.Publish(ctx, topic, payload)
}
