package ai

import (
	"sync"
)

// Registry hands out one shared client per provider kind. Clients are
// stateless aside from their http.Client, so a single handle per kind is
// enough; construction is lazy and guarded by the mutex.
type Registry struct {
	mu      sync.Mutex
	clients map[Kind]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[Kind]Client)}
}

// Register overrides the client for a kind. Used by tests to point a kind
// at a fake or a local httptest server.
func (r *Registry) Register(kind Kind, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[kind] = c
}

// Client returns the shared client for kind, constructing it on first use.
// Returns nil for a kind the registry does not know how to build.
func (r *Registry) Client(kind Kind) Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[kind]; ok {
		return c
	}
	var c Client
	switch kind {
	case KindOpenAI:
		c = NewOpenAIClient("")
	case KindAnthropic:
		c = NewAnthropicClient("")
	default:
		return nil
	}
	r.clients[kind] = c
	return c
}
