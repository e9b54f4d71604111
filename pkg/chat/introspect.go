package chat

import (
	"context"
	"strings"
	"time"

	"github.com/six7/six7-node/pkg/fabric"
)

// introspectTimeout bounds the read-only engine queries issued by display
// commands.
const introspectTimeout = 5 * time.Second

func (c *Client) cmdList() {
	contacts := c.node.ConnectedContacts()
	c.printf("")
	c.printf("%s── Connected ── %d peers%s", colBold, len(contacts), colReset)
	c.printContacts(contacts)
	c.printf("")
}

func (c *Client) cmdFabric() {
	all := c.node.AllContacts()
	connected := 0
	for _, contact := range all {
		if contact.Connected {
			connected++
		}
	}
	c.printf("")
	c.printf("%s── Fabric ── %d peers, %d connected%s", colBold, len(all), connected, colReset)
	c.printContacts(all)
	c.printf("")
}

func (c *Client) cmdRouting() {
	routing := c.node.RoutingPeers()
	c.printf("")
	c.printf("%s── DHT Routing ── %d contacts%s", colBold, len(routing), colReset)
	c.printContacts(routing)

	topics := c.node.TopicPeers()
	unique := map[string]struct{}{}
	for _, tp := range topics {
		for _, p := range tp.Peers {
			unique[p] = struct{}{}
		}
	}
	c.printf("")
	c.printf("%s── GossipSub ── %d topics, %d unique peers%s", colBold, len(topics), len(unique), colReset)
	if len(topics) == 0 {
		c.printf("  (none)")
	}
	for _, tp := range topics {
		c.printf("  topic: %s  (%d peers)", tp.Topic, len(tp.Peers))
		for _, p := range tp.Peers {
			c.printf("    %s..", shortHex(p))
		}
	}
	c.printf("")
}

func (c *Client) cmdDHT() {
	ctx, cancel := context.WithTimeout(context.Background(), introspectTimeout)
	defer cancel()

	entries := c.node.DHTEntries(ctx)
	c.printf("")
	c.printf("%s── DHT Store ── %d entries%s", colBold, len(entries), colReset)
	if len(entries) == 0 {
		c.printf("  (none)")
	}
	for _, e := range entries {
		c.printf("  %s  (%d bytes, by %s)", e.Key, e.Size, e.StoredBy)
	}
	c.printf("")
}

func (c *Client) cmdTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), introspectTimeout)
	defer cancel()

	t := c.node.Telemetry(ctx)
	c.printf("╔════════════════════════════════════════════════════════════════╗")
	c.printf("║                         Telemetry                              ║")
	c.printf("╠════════════════════════════════════════════════════════════════╣")
	c.printf("║ DHT Store        : %6d keys                                 ║", t.StoredKeys)
	c.printf("║ Routing Peers    : %6d                                      ║", t.RoutingPeers)
	c.printf("║ GossipSub Mesh   : %6d peers                                ║", t.GossipMeshPeers)
	c.printf("║ GossipSub Topics : %6d                                      ║", t.GossipTopics)
	c.printf("║ Requests Sent    : %6d                                      ║", t.RequestsSent)
	c.printf("║ Requests Recv    : %6d                                      ║", t.RequestsReceived)
	c.printf("║ Responses OK     : %6d                                      ║", t.ResponsesOK)
	c.printf("║ Transport Errors : %6d                                      ║", t.TransportErrors)
	c.printf("║ Publishes Sent   : %6d                                      ║", t.PublishesSent)
	c.printf("║ Messages Recv    : %6d                                      ║", t.MessagesReceived)
	c.printf("╚════════════════════════════════════════════════════════════════╝")
}

func (c *Client) printContacts(contacts []fabric.Contact) {
	if len(contacts) == 0 {
		c.printf("  (none)")
		return
	}
	for _, contact := range contacts {
		status := colRed + "disconnected" + colReset
		if contact.Connected {
			status = colGreen + "connected" + colReset
		}
		c.printf("  %s..  [%s]  %s", shortHex(contact.Identity), status, strings.Join(contact.Addrs, ", "))
	}
}

// shortHex truncates an identity for table display.
func shortHex(identity string) string {
	if len(identity) <= 16 {
		return identity
	}
	return identity[:16]
}
