package chat

import (
	"github.com/six7/six7-node/pkg/protocol"
	"github.com/six7/six7-node/pkg/registry"
)

// kindTags maps a decoded message kind to its display annotation. Plain
// text carries no tag.
var kindTags = map[protocol.MessageKind]string{
	protocol.KindText:            "",
	protocol.KindContactRequest:  " [contact request]",
	protocol.KindContactAccepted: " [contact accepted]",
	protocol.KindReadReceipt:     " [read receipt]",
	protocol.KindGroupInvite:     " [group invite]",
	protocol.KindVibe:            " [vibe]",
	protocol.KindProfileUpdate:   " [profile update]",
}

// RunDirect drains the inbound direct-request stream until it closes.
// Every request that passes the size check is answered exactly once:
// structured messages get the v1.3 ack record, undecodable payloads get
// the legacy plain-bytes token. Oversized payloads are dropped without a
// reply.
func (c *Client) RunDirect() {
	for req := range c.node.IncomingRequests() {
		if len(req.Data) > protocol.MaxMessageSize {
			continue
		}
		fromShort := registry.Prefix(req.From)

		dm, ok := protocol.DecodeDirectPayload(req.Data)
		if !ok {
			c.printf("%s[dm ← %s]%s %s", colMagenta, fromShort, colReset, protocol.SanitizeText(string(req.Data)))
			req.Respond([]byte(protocol.LegacyAckToken))
			continue
		}

		kind := dm.Kind()
		tag, known := kindTags[kind]
		switch {
		case known:
			c.printf("%s[dm ← %s]%s%s %s", colMagenta, fromShort, colReset, tag, protocol.SanitizeText(dm.Content))
		default:
			// Unlisted kinds (including ones newer than this client) are
			// shown with their raw tag and still acknowledged.
			c.printf("%s[dm ← %s]%s [%s] %s", colMagenta, fromShort, colReset, kind.Tag(), protocol.SanitizeText(dm.Content))
		}

		req.Respond(protocol.EncodeAck(protocol.AckSuccess()))
	}
	c.log.Debug().Msg("direct request stream closed")
}
