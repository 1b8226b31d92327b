package handoff

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"supportflow/internal/types"
)

type MemoryArchive struct {
	mu   sync.RWMutex
	data map[string]types.EscalationPackage // by ticket id
	keys map[string]string
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		data: map[string]types.EscalationPackage{},
		keys: map[string]string{},
	}
}

func (a *MemoryArchive) Put(_ context.Context, pkg types.EscalationPackage) (string, error) {
	id := strings.TrimSpace(pkg.Ticket.ID)
	if id == "" {
		return "", fmt.Errorf("ticket_id is required")
	}
	key := objectKey(pkg)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[id] = pkg
	a.keys[id] = key
	return key, nil
}

func (a *MemoryArchive) Get(_ context.Context, ticketID string) (types.EscalationPackage, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pkg, ok := a.data[ticketID]
	if !ok {
		return types.EscalationPackage{}, ErrNotFound
	}
	return pkg, nil
}

func (a *MemoryArchive) List(_ context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
