package chat

import (
	"github.com/six7/six7-node/pkg/protocol"
	"github.com/six7/six7-node/pkg/registry"
)

// RunPubSub drains the group-message stream until it closes. Oversized
// payloads, traffic for other topics, and this node's own echoes are all
// dropped before decoding. Channel close is the normal shutdown path.
func (c *Client) RunPubSub() {
	for msg := range c.node.Messages() {
		if len(msg.Data) > protocol.MaxMessageSize {
			continue
		}
		if msg.Topic != c.topic {
			continue
		}
		if msg.From == c.identity {
			continue
		}

		idPrefix := registry.Prefix(msg.From)

		var senderName, displayLine string
		if gm, ok := protocol.DecodeGroupPayload(msg.Data); ok {
			// The name shown for a structured message comes from the
			// registry; the payload carries no display name.
			senderName = c.peers.NameOr(idPrefix, idPrefix)
			displayLine = senderName + "@" + idPrefix + ": " + gm.Content
		} else {
			// Legacy plain text already embeds "name@prefix: ".
			senderName = protocol.LegacySenderName(msg.Data, idPrefix)
			displayLine = string(msg.Data)
		}

		c.peers.Observe(idPrefix, senderName)

		c.printf("%s[room]%s %s", colGreen, colReset, protocol.SanitizeText(displayLine))
	}
	c.log.Debug().Msg("pubsub stream closed")
}
