package goFlow

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/MrEthical07/goFlow/flow"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	testFlowID  = "6f1c2b9e-0d4a-4c1e-9a57-2b8f0e3d4c11"
	otherFlowID = "0a7d3c55-91e2-4f0b-8d3e-5c6b7a8f9e10"
)

type fakeProvider struct {
	mu sync.Mutex

	getFlow      func(context.Context, FlowType, string) (Document, error)
	update       func(context.Context, FlowType, string, UpdateBody) (UpdateResult, error)
	createLogout func(context.Context) (LogoutFlow, error)
	submitLogout func(context.Context, string) error

	gets    int
	updates []UpdateBody
	tokens  []string
}

func (p *fakeProvider) GetFlow(ctx context.Context, kind FlowType, id string) (Document, error) {
	p.mu.Lock()
	p.gets++
	fn := p.getFlow
	p.mu.Unlock()
	if fn == nil {
		return Document{ID: id, Type: kind}, nil
	}
	return fn(ctx, kind, id)
}

func (p *fakeProvider) UpdateFlow(ctx context.Context, kind FlowType, id string, body UpdateBody) (UpdateResult, error) {
	p.mu.Lock()
	p.updates = append(p.updates, body)
	fn := p.update
	p.mu.Unlock()
	if fn == nil {
		return UpdateResult{}, nil
	}
	return fn(ctx, kind, id, body)
}

func (p *fakeProvider) CreateLogoutFlow(ctx context.Context) (LogoutFlow, error) {
	if p.createLogout == nil {
		return LogoutFlow{LogoutToken: "logout-token"}, nil
	}
	return p.createLogout(ctx)
}

func (p *fakeProvider) SubmitLogout(ctx context.Context, token string) error {
	p.mu.Lock()
	p.tokens = append(p.tokens, token)
	p.mu.Unlock()
	if p.submitLogout == nil {
		return nil
	}
	return p.submitLogout(ctx, token)
}

func (p *fakeProvider) lastUpdate() UpdateBody {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return UpdateBody{}
	}
	return p.updates[len(p.updates)-1]
}

type recordingNavigator struct {
	mu       sync.Mutex
	location *url.URL
	calls    []string
}

func newRecordingNavigator(loc string) *recordingNavigator {
	u, _ := url.Parse(loc)
	return &recordingNavigator{location: u}
}

func (n *recordingNavigator) record(call string) {
	n.mu.Lock()
	n.calls = append(n.calls, call)
	n.mu.Unlock()
}

func (n *recordingNavigator) Assign(target string) { n.record("assign " + target) }
func (n *recordingNavigator) Push(path string)     { n.record("push " + path) }
func (n *recordingNavigator) Replace(path string)  { n.record("replace " + path) }
func (n *recordingNavigator) Refresh()             { n.record("refresh") }

func (n *recordingNavigator) Location() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	u := *n.location
	return &u
}

func (n *recordingNavigator) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newTestEngine(t *testing.T, p IdentityProviderClient, configure ...func(*Builder)) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Routes.AppURL = "https://app.example.com"
	cfg.Metrics.Enabled = true

	b := New().WithConfig(cfg).WithProvider(p)
	for _, fn := range configure {
		fn(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func csrfNode(token string) flow.Node {
	return flow.Node{
		Type:  "input",
		Group: "default",
		Attributes: flow.NodeAttributes{
			Name:     "csrf_token",
			Type:     "hidden",
			Value:    token,
			NodeType: "input",
		},
	}
}

func inputNode(name string, msgs ...flow.Message) flow.Node {
	return flow.Node{
		Type:  "input",
		Group: "password",
		Attributes: flow.NodeAttributes{
			Name:     name,
			Type:     "text",
			NodeType: "input",
		},
		Messages: msgs,
	}
}

func errorMessage(id int64, text string) flow.Message {
	return flow.Message{ID: id, Text: text, Type: flow.MessageError}
}

func testDoc(id string, kind FlowType, nodes ...flow.Node) Document {
	return Document{
		ID:   id,
		Type: kind,
		UI: flow.UI{
			Action: "https://id.example.com/self-service/" + string(kind) + "?flow=" + id,
			Method: "POST",
			Nodes:  append([]flow.Node{csrfNode("csrf-" + id[:8])}, nodes...),
		},
	}
}
