// Package fabric exposes the peer-to-peer networking engine the chat
// client runs on. The engine itself (identity, NAT traversal, DHT
// routing, gossip mesh) is supplied by libp2p; this package defines the
// narrow contract the client depends on and the adapter that fulfils it.
package fabric

import "context"

// Message is one item from the pub/sub stream. From is the sender's
// transport-authenticated identity, never taken from the payload.
type Message struct {
	Topic string
	From  string
	Data  []byte
}

// Request is one inbound direct-message request. Respond is single-use:
// every request must be answered exactly once.
type Request struct {
	From  string
	Data  []byte
	reply chan []byte
}

// NewRequest builds a request and returns the channel its single response
// will be delivered on.
func NewRequest(from string, data []byte) (Request, <-chan []byte) {
	reply := make(chan []byte, 1)
	return Request{From: from, Data: data, reply: reply}, reply
}

// Respond delivers the response for this request. It returns false if the
// request was already answered; the first response always wins.
func (r Request) Respond(data []byte) bool {
	select {
	case r.reply <- data:
		return true
	default:
		return false
	}
}

// Contact describes a peer known to the fabric.
type Contact struct {
	Identity  string
	Addrs     []string
	Connected bool
}

// TopicPeers lists the gossip peers attached to one topic.
type TopicPeers struct {
	Topic string
	Peers []string
}

// DHTEntry describes one record in the local DHT store.
type DHTEntry struct {
	Key      string
	Size     int
	StoredBy string
}

// Telemetry is a point-in-time snapshot of fabric counters.
type Telemetry struct {
	StoredKeys       int
	RoutingPeers     int
	GossipTopics     int
	GossipMeshPeers  int
	RequestsSent     uint64
	RequestsReceived uint64
	ResponsesOK      uint64
	TransportErrors  uint64
	PublishesSent    uint64
	MessagesReceived uint64
}

// Node is the engine contract the chat client is written against.
//
// Messages and IncomingRequests each return a stream owned by a single
// consumer; the channels close when the node shuts down, which consumers
// treat as a normal stop.
type Node interface {
	// Identity returns this node's 64-character hex identity.
	Identity() string

	// LocalAddr returns the bound listen address.
	LocalAddr() string

	// RoutableAddresses returns addresses other peers can dial.
	RoutableAddresses() []string

	// Bootstrap connects to a known peer by identity and addresses.
	Bootstrap(ctx context.Context, identity string, addrs []string) error

	// BootstrapPublic joins via the well-known public bootstrap peers.
	BootstrapPublic(ctx context.Context) error

	// Subscribe joins a pub/sub topic; its traffic appears on Messages.
	Subscribe(ctx context.Context, topic string) error

	// Publish broadcasts bytes on a topic.
	Publish(ctx context.Context, topic string, data []byte) error

	// Messages returns the pub/sub message stream.
	Messages() <-chan Message

	// IncomingRequests returns the inbound direct-request stream.
	IncomingRequests() <-chan Request

	// Send delivers bytes to a peer and returns its response. The
	// caller bounds the wait through ctx.
	Send(ctx context.Context, identity string, data []byte) ([]byte, error)

	// Read-only introspection for display commands.
	RoutingPeers() []Contact
	AllContacts() []Contact
	ConnectedContacts() []Contact
	DHTEntries(ctx context.Context) []DHTEntry
	TopicPeers() []TopicPeers
	Telemetry(ctx context.Context) Telemetry

	// Close releases the node's resources and closes both streams.
	Close() error
}
