package fabric

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ds "github.com/ipfs/go-datastore"
	dsquery "github.com/ipfs/go-datastore/query"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	ic "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	p2pprotocol "github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/rs/zerolog"
)

// DirectProtocolID is the stream protocol used for direct messages.
const DirectProtocolID = p2pprotocol.ID("/six7/dm/1.3.0")

const (
	// identityBytes is the raw length of an ed25519 public key; its hex
	// form is the 64-character peer identity.
	identityBytes = 32

	// streamTimeout bounds how long an inbound stream may occupy the
	// handler, including the wait for the consumer's reply.
	streamTimeout = 30 * time.Second

	messageBuffer = 64
	requestBuffer = 64
)

var ErrInvalidIdentity = errors.New("identity must be 64 hex characters")

// Config carries node construction parameters.
type Config struct {
	// Port is the TCP/UDP listen port; 0 picks a random port.
	Port int

	// Logger receives fabric-internal events.
	Logger zerolog.Logger
}

// Libp2pNode implements Node on top of a libp2p host, a Kademlia DHT and
// gossipsub.
type Libp2pNode struct {
	host     host.Host
	dht      *dht.IpfsDHT
	ps       *pubsub.PubSub
	dstore   ds.Batching
	log      zerolog.Logger
	identity string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
	subbed map[string]bool

	// wg tracks every goroutine that may send on msgs or reqs, so Close
	// can drain them before closing the channels.
	wg sync.WaitGroup

	msgs chan Message
	reqs chan Request

	closeOnce sync.Once

	requestsSent     atomic.Uint64
	requestsReceived atomic.Uint64
	responsesOK      atomic.Uint64
	transportErrors  atomic.Uint64
	publishesSent    atomic.Uint64
	messagesReceived atomic.Uint64
}

// New builds and binds a libp2p-backed fabric node with a fresh ed25519
// identity.
func New(ctx context.Context, cfg Config) (*Libp2pNode, error) {
	priv, pub, err := ic.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity key: %w", err)
	}
	identity, err := identityFromKey(pub)
	if err != nil {
		return nil, err
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(
			fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", cfg.Port),
			fmt.Sprintf("/ip4/0.0.0.0/udp/%d/quic-v1", cfg.Port),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind node: %w", err)
	}

	dstore := dssync.MutexWrap(ds.NewMapDatastore())
	kdht, err := dht.New(ctx, h, dht.Mode(dht.ModeServer), dht.Datastore(dstore))
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to start DHT: %w", err)
	}

	gs, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		kdht.Close()
		h.Close()
		return nil, fmt.Errorf("failed to start gossipsub: %w", err)
	}

	nodeCtx, cancel := context.WithCancel(context.Background())
	n := &Libp2pNode{
		host:     h,
		dht:      kdht,
		ps:       gs,
		dstore:   dstore,
		log:      cfg.Logger,
		identity: identity,
		ctx:      nodeCtx,
		cancel:   cancel,
		topics:   make(map[string]*pubsub.Topic),
		subbed:   make(map[string]bool),
		msgs:     make(chan Message, messageBuffer),
		reqs:     make(chan Request, requestBuffer),
	}

	h.SetStreamHandler(DirectProtocolID, n.handleStream)

	n.log.Debug().
		Str("identity", identity).
		Str("peer_id", h.ID().String()).
		Msg("fabric node started")

	return n, nil
}

// Identity returns the hex form of this node's ed25519 public key.
func (n *Libp2pNode) Identity() string {
	return n.identity
}

// LocalAddr returns the first listen address.
func (n *Libp2pNode) LocalAddr() string {
	addrs := n.host.Network().ListenAddresses()
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0].String()
}

// RoutableAddresses returns dialable addresses including the peer suffix.
func (n *Libp2pNode) RoutableAddresses() []string {
	out := make([]string, 0, len(n.host.Addrs()))
	for _, a := range n.host.Addrs() {
		out = append(out, fmt.Sprintf("%s/p2p/%s", a, n.host.ID()))
	}
	return out
}

// Bootstrap connects to a specific peer and seeds the routing table.
func (n *Libp2pNode) Bootstrap(ctx context.Context, identity string, addrs []string) error {
	pid, err := peerIDFromIdentity(identity)
	if err != nil {
		return err
	}

	mas := make([]ma.Multiaddr, 0, len(addrs))
	for _, addr := range addrs {
		m, err := ma.NewMultiaddr(addr)
		if err != nil {
			return fmt.Errorf("invalid bootstrap address %q: %w", addr, err)
		}
		mas = append(mas, m)
	}

	if err := n.host.Connect(ctx, peer.AddrInfo{ID: pid, Addrs: mas}); err != nil {
		return fmt.Errorf("failed to connect to bootstrap peer: %w", err)
	}
	return n.dht.Bootstrap(ctx)
}

// BootstrapPublic joins the network through the well-known public
// bootstrap peers.
func (n *Libp2pNode) BootstrapPublic(ctx context.Context) error {
	connected := 0
	for _, addr := range dht.DefaultBootstrapPeers {
		info, err := peer.AddrInfoFromP2pAddr(addr)
		if err != nil {
			continue
		}
		if err := n.host.Connect(ctx, *info); err != nil {
			n.log.Debug().Err(err).Str("peer", info.ID.String()).Msg("public bootstrap peer unreachable")
			continue
		}
		connected++
	}
	if connected == 0 {
		return errors.New("no public bootstrap peer reachable")
	}
	return n.dht.Bootstrap(ctx)
}

// Subscribe joins a topic and starts draining it into Messages.
func (n *Libp2pNode) Subscribe(ctx context.Context, topic string) error {
	t, err := n.joinTopic(topic)
	if err != nil {
		return err
	}

	n.mu.Lock()
	already := n.subbed[topic]
	n.subbed[topic] = true
	n.mu.Unlock()
	if already {
		return nil
	}

	sub, err := t.Subscribe()
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	n.wg.Add(1)
	go n.readLoop(topic, sub)
	return nil
}

// Publish broadcasts bytes on a topic, joining it on demand.
func (n *Libp2pNode) Publish(ctx context.Context, topic string, data []byte) error {
	t, err := n.joinTopic(topic)
	if err != nil {
		return err
	}
	if err := t.Publish(ctx, data); err != nil {
		n.transportErrors.Add(1)
		return err
	}
	n.publishesSent.Add(1)
	return nil
}

// Messages returns the merged pub/sub stream.
func (n *Libp2pNode) Messages() <-chan Message {
	return n.msgs
}

// IncomingRequests returns the inbound direct-request stream.
func (n *Libp2pNode) IncomingRequests() <-chan Request {
	return n.reqs
}

// Send opens a stream to the peer, writes one framed request and reads
// one framed response. The wait is bounded by ctx.
func (n *Libp2pNode) Send(ctx context.Context, identity string, data []byte) ([]byte, error) {
	pid, err := peerIDFromIdentity(identity)
	if err != nil {
		return nil, err
	}

	// The peer may be known only through the DHT; resolve addresses
	// before dialing.
	if len(n.host.Peerstore().Addrs(pid)) == 0 {
		if info, ferr := n.dht.FindPeer(ctx, pid); ferr == nil {
			n.host.Peerstore().AddAddrs(pid, info.Addrs, peerstore.TempAddrTTL)
		}
	}

	n.requestsSent.Add(1)

	s, err := n.host.NewStream(ctx, pid, DirectProtocolID)
	if err != nil {
		n.transportErrors.Add(1)
		return nil, fmt.Errorf("failed to reach peer: %w", err)
	}
	defer s.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = s.SetDeadline(dl)
	}

	if err := writeFrame(s, data); err != nil {
		n.transportErrors.Add(1)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if err := s.CloseWrite(); err != nil {
		n.transportErrors.Add(1)
		return nil, err
	}

	resp, err := readFrame(s)
	if err != nil {
		n.transportErrors.Add(1)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	n.responsesOK.Add(1)
	return resp, nil
}

// RoutingPeers lists DHT routing table contacts.
func (n *Libp2pNode) RoutingPeers() []Contact {
	peers := n.dht.RoutingTable().ListPeers()
	out := make([]Contact, 0, len(peers))
	for _, pid := range peers {
		out = append(out, n.contactFor(pid))
	}
	return out
}

// AllContacts lists every peer with known addresses.
func (n *Libp2pNode) AllContacts() []Contact {
	peers := n.host.Peerstore().PeersWithAddrs()
	out := make([]Contact, 0, len(peers))
	for _, pid := range peers {
		if pid == n.host.ID() {
			continue
		}
		out = append(out, n.contactFor(pid))
	}
	return out
}

// ConnectedContacts lists peers with a live connection.
func (n *Libp2pNode) ConnectedContacts() []Contact {
	peers := n.host.Network().Peers()
	out := make([]Contact, 0, len(peers))
	for _, pid := range peers {
		out = append(out, n.contactFor(pid))
	}
	return out
}

// DHTEntries lists records held in the local DHT store.
func (n *Libp2pNode) DHTEntries(ctx context.Context) []DHTEntry {
	results, err := n.dstore.Query(ctx, dsquery.Query{})
	if err != nil {
		n.log.Debug().Err(err).Msg("DHT store query failed")
		return nil
	}
	defer results.Close()

	var out []DHTEntry
	for r := range results.Next() {
		if r.Error != nil {
			break
		}
		out = append(out, DHTEntry{
			Key:      r.Key,
			Size:     len(r.Value),
			StoredBy: "local",
		})
	}
	return out
}

// TopicPeers lists gossip peers per joined topic.
func (n *Libp2pNode) TopicPeers() []TopicPeers {
	n.mu.Lock()
	names := make([]string, 0, len(n.topics))
	for name := range n.topics {
		names = append(names, name)
	}
	n.mu.Unlock()

	out := make([]TopicPeers, 0, len(names))
	for _, name := range names {
		pids := n.ps.ListPeers(name)
		peers := make([]string, 0, len(pids))
		for _, pid := range pids {
			peers = append(peers, n.identityOf(pid))
		}
		out = append(out, TopicPeers{Topic: name, Peers: peers})
	}
	return out
}

// Telemetry snapshots the node's counters.
func (n *Libp2pNode) Telemetry(ctx context.Context) Telemetry {
	// Mesh peers are counted once even when they sit in several topics.
	mesh := make(map[peer.ID]struct{})
	n.mu.Lock()
	names := make([]string, 0, len(n.topics))
	for name := range n.topics {
		names = append(names, name)
	}
	n.mu.Unlock()
	for _, name := range names {
		for _, pid := range n.ps.ListPeers(name) {
			mesh[pid] = struct{}{}
		}
	}

	return Telemetry{
		StoredKeys:       len(n.DHTEntries(ctx)),
		RoutingPeers:     n.dht.RoutingTable().Size(),
		GossipTopics:     len(names),
		GossipMeshPeers:  len(mesh),
		RequestsSent:     n.requestsSent.Load(),
		RequestsReceived: n.requestsReceived.Load(),
		ResponsesOK:      n.responsesOK.Load(),
		TransportErrors:  n.transportErrors.Load(),
		PublishesSent:    n.publishesSent.Load(),
		MessagesReceived: n.messagesReceived.Load(),
	}
}

// Close shuts the node down and closes both streams.
func (n *Libp2pNode) Close() error {
	var err error
	n.closeOnce.Do(func() {
		n.cancel()
		if derr := n.dht.Close(); derr != nil {
			err = derr
		}
		if herr := n.host.Close(); herr != nil && err == nil {
			err = herr
		}
		n.wg.Wait()
		close(n.msgs)
		close(n.reqs)
	})
	return err
}

func (n *Libp2pNode) joinTopic(name string) (*pubsub.Topic, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t, ok := n.topics[name]; ok {
		return t, nil
	}
	t, err := n.ps.Join(name)
	if err != nil {
		return nil, fmt.Errorf("failed to join topic %s: %w", name, err)
	}
	n.topics[name] = t
	return t, nil
}

// readLoop drains one subscription into the merged message channel until
// the node shuts down.
func (n *Libp2pNode) readLoop(topic string, sub *pubsub.Subscription) {
	defer n.wg.Done()
	defer sub.Cancel()
	for {
		msg, err := sub.Next(n.ctx)
		if err != nil {
			return
		}
		n.messagesReceived.Add(1)
		out := Message{
			Topic: topic,
			From:  n.identityOf(msg.GetFrom()),
			Data:  msg.GetData(),
		}
		select {
		case n.msgs <- out:
		case <-n.ctx.Done():
			return
		}
	}
}

// handleStream serves one inbound direct-message request. The consumer's
// reply is written back on the same stream; if no reply arrives within
// the stream timeout the stream is dropped.
func (n *Libp2pNode) handleStream(s network.Stream) {
	n.wg.Add(1)
	defer n.wg.Done()
	defer s.Close()
	_ = s.SetDeadline(time.Now().Add(streamTimeout))

	data, err := readFrame(s)
	if err != nil {
		n.transportErrors.Add(1)
		return
	}
	n.requestsReceived.Add(1)

	req, reply := NewRequest(n.identityOf(s.Conn().RemotePeer()), data)

	select {
	case n.reqs <- req:
	case <-n.ctx.Done():
		return
	}

	select {
	case resp := <-reply:
		if err := writeFrame(s, resp); err != nil {
			n.transportErrors.Add(1)
		}
	case <-time.After(streamTimeout):
		n.log.Debug().Msg("consumer did not answer inbound request in time")
	case <-n.ctx.Done():
	}
}

func (n *Libp2pNode) contactFor(pid peer.ID) Contact {
	addrs := n.host.Peerstore().Addrs(pid)
	strs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		strs = append(strs, a.String())
	}
	return Contact{
		Identity:  n.identityOf(pid),
		Addrs:     strs,
		Connected: n.host.Network().Connectedness(pid) == network.Connected,
	}
}

// identityOf recovers a peer's hex identity from its peer ID. Ed25519
// peer IDs embed the public key; for anything else the peer ID string is
// the best available name.
func (n *Libp2pNode) identityOf(pid peer.ID) string {
	if pid == n.host.ID() {
		return n.identity
	}
	pk, err := pid.ExtractPublicKey()
	if err != nil {
		return pid.String()
	}
	identity, err := identityFromKey(pk)
	if err != nil {
		return pid.String()
	}
	return identity
}

func identityFromKey(pk ic.PubKey) (string, error) {
	raw, err := pk.Raw()
	if err != nil {
		return "", fmt.Errorf("failed to extract public key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func peerIDFromIdentity(identity string) (peer.ID, error) {
	raw, err := hex.DecodeString(identity)
	if err != nil || len(raw) != identityBytes {
		return "", ErrInvalidIdentity
	}
	pk, err := ic.UnmarshalEd25519PublicKey(raw)
	if err != nil {
		return "", fmt.Errorf("invalid identity key: %w", err)
	}
	return peer.IDFromPublicKey(pk)
}
