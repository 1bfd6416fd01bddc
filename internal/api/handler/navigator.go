package handler

import (
	"context"
	"sync"

	"github.com/diplomatch/portal/internal/core/ports"
)

type navigationKey struct{}

type pendingNavigation struct {
	mu   sync.Mutex
	path string
}

// PendingNavigator records the navigation the session asks for against the
// request that raised it, so that request can report it as navigate_to.
// Navigations raised under a context without a scope are dropped.
type PendingNavigator struct{}

var _ ports.Navigator = (*PendingNavigator)(nil)

func NewPendingNavigator() *PendingNavigator {
	return &PendingNavigator{}
}

// Scope returns a child of ctx that collects navigations for one request.
func (n *PendingNavigator) Scope(ctx context.Context) context.Context {
	return context.WithValue(ctx, navigationKey{}, &pendingNavigation{})
}

func (n *PendingNavigator) Navigate(ctx context.Context, path string) {
	p, ok := ctx.Value(navigationKey{}).(*pendingNavigation)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

// Take returns the last path recorded in ctx's scope and clears it.
func (n *PendingNavigator) Take(ctx context.Context) string {
	p, ok := ctx.Value(navigationKey{}).(*pendingNavigation)
	if !ok {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	path := p.path
	p.path = ""
	return path
}
