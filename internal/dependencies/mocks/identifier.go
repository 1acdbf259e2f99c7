package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/dicearena-go/internal/dependencies/identifier"
)

// MockIdentifier returns queued identifiers, then sequential ones
type MockIdentifier struct {
	mu     sync.Mutex
	queued []string
	next   int
}

// Ensure MockIdentifier implements Generator
var _ identifier.Generator = (*MockIdentifier)(nil)

// NewMockIdentifier creates a new MockIdentifier
func NewMockIdentifier() *MockIdentifier {
	return &MockIdentifier{}
}

// NewID returns the next queued id, or "id-N" once the queue is empty
func (g *MockIdentifier) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

// QueueIDs adds ids to be returned by NewID
func (g *MockIdentifier) QueueIDs(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
