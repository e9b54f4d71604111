// Package chat implements the interactive client: two concurrent message
// consumers, a command dispatcher, and the peer-name registry they share.
package chat

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/six7/six7-node/pkg/fabric"
	"github.com/six7/six7-node/pkg/protocol"
	"github.com/six7/six7-node/pkg/registry"
)

// SendTimeout bounds every outgoing direct send.
const SendTimeout = 10 * time.Second

// Config holds the operator-chosen client settings.
type Config struct {
	// Name is the display name broadcast with outgoing messages.
	Name string

	// Room is the chatroom to join.
	Room string
}

// Client ties the fabric node, the peer registry, and terminal output
// together. The consumers and the dispatcher each run as their own
// goroutine and share only the registry, which guards itself.
type Client struct {
	node  fabric.Node
	cfg   Config
	peers *registry.Registry
	log   zerolog.Logger

	identity string
	prefix   string
	topic    string

	outMu sync.Mutex
	out   io.Writer

	// pendingVibe holds the secret behind the latest commitment so it can
	// be revealed later. Only the dispatcher goroutine touches it.
	pendingVibe *vibeState
}

type vibeState struct {
	id     string
	secret string
}

// NewClient builds a client around a started node.
func NewClient(node fabric.Node, cfg Config, out io.Writer, log zerolog.Logger) *Client {
	identity := node.Identity()
	return &Client{
		node:     node,
		cfg:      cfg,
		peers:    registry.New(),
		log:      log,
		identity: identity,
		prefix:   registry.Prefix(identity),
		topic:    protocol.RoomTopic(cfg.Room),
		out:      out,
	}
}

// Peers exposes the registry for display commands and tests.
func (c *Client) Peers() *registry.Registry {
	return c.peers
}

// printf writes one line of terminal output. Output from the three
// goroutines is serialized so lines never interleave mid-row.
func (c *Client) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}
