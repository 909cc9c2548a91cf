package server

import (
	"net/url"
	"sync"
)

// Directive is one navigation the browser must perform.
type Directive struct {
	// Action is assign (full page load), push, replace or refresh.
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
}

// navigator records the coordinator's navigation as directives.
type navigator struct {
	mu         sync.Mutex
	location   *url.URL
	directives []Directive
}

func newNavigator(path, param, flowID string) *navigator {
	loc := &url.URL{Path: path}
	if flowID != "" {
		loc.RawQuery = url.Values{param: {flowID}}.Encode()
	}
	return &navigator{location: loc}
}

func (n *navigator) Assign(target string) { n.add("assign", target) }
func (n *navigator) Push(path string)     { n.add("push", path) }
func (n *navigator) Replace(path string)  { n.add("replace", path) }
func (n *navigator) Refresh()             { n.add("refresh", "") }

func (n *navigator) Location() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	u := *n.location
	return &u
}

func (n *navigator) add(action, target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.directives = append(n.directives, Directive{Action: action, Target: target})
	if action == "push" || action == "replace" {
		if u, err := url.Parse(target); err == nil {
			n.location = u
		}
	}
}

func (n *navigator) Directives() []Directive {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Directive(nil), n.directives...)
}
