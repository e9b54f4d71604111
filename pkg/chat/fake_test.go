package chat

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/six7/six7-node/pkg/fabric"
)

const (
	testIdentity = "aa11bb22cc33dd44ee55ff660011223344556677889900aabbccddeeff001122"
	peerIdentity = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"
)

type publishCall struct {
	topic string
	data  []byte
}

// fakeNode is a channel-backed Node for driving the consumers and the
// dispatcher in tests.
type fakeNode struct {
	identity string
	msgs     chan fabric.Message
	reqs     chan fabric.Request

	mu        sync.Mutex
	published []publishCall
	sent      []publishCall
	sendFn    func(ctx context.Context, identity string, data []byte) ([]byte, error)
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		identity: testIdentity,
		msgs:     make(chan fabric.Message, 16),
		reqs:     make(chan fabric.Request, 16),
	}
}

func (f *fakeNode) Identity() string            { return f.identity }
func (f *fakeNode) LocalAddr() string           { return "/ip4/127.0.0.1/tcp/0" }
func (f *fakeNode) RoutableAddresses() []string { return nil }

func (f *fakeNode) Bootstrap(context.Context, string, []string) error { return nil }
func (f *fakeNode) BootstrapPublic(context.Context) error             { return nil }
func (f *fakeNode) Subscribe(context.Context, string) error           { return nil }

func (f *fakeNode) Publish(_ context.Context, topic string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishCall{topic: topic, data: data})
	return nil
}

func (f *fakeNode) Messages() <-chan fabric.Message         { return f.msgs }
func (f *fakeNode) IncomingRequests() <-chan fabric.Request { return f.reqs }

func (f *fakeNode) Send(ctx context.Context, identity string, data []byte) ([]byte, error) {
	f.mu.Lock()
	f.sent = append(f.sent, publishCall{topic: identity, data: data})
	fn := f.sendFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, identity, data)
	}
	return nil, context.DeadlineExceeded
}

func (f *fakeNode) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeNode) publishedCalls() []publishCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishCall(nil), f.published...)
}

func (f *fakeNode) RoutingPeers() []fabric.Contact             { return nil }
func (f *fakeNode) AllContacts() []fabric.Contact              { return nil }
func (f *fakeNode) ConnectedContacts() []fabric.Contact        { return nil }
func (f *fakeNode) DHTEntries(context.Context) []fabric.DHTEntry { return nil }
func (f *fakeNode) TopicPeers() []fabric.TopicPeers            { return nil }
func (f *fakeNode) Telemetry(context.Context) fabric.Telemetry { return fabric.Telemetry{} }

func (f *fakeNode) Close() error {
	close(f.msgs)
	close(f.reqs)
	return nil
}

// testClient wires a client to a fake node and a captured output buffer.
type testClient struct {
	*Client
	node *fakeNode
	out  *bytes.Buffer
}

func newTestClient(name, room string) *testClient {
	node := newFakeNode()
	out := &bytes.Buffer{}
	c := NewClient(node, Config{Name: name, Room: room}, out, zerolog.Nop())
	return &testClient{Client: c, node: node, out: out}
}

// output returns everything printed so far. Safe to call once the
// goroutine under test has finished.
func (tc *testClient) output() string {
	tc.outMu.Lock()
	defer tc.outMu.Unlock()
	return tc.out.String()
}

func (tc *testClient) outputContains(s string) bool {
	return strings.Contains(tc.output(), s)
}
