package mock

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
)

// ---- ComponentSource mock ----

var _ repository.ComponentSource = (*ComponentSource)(nil)

// ComponentSource is a test double for repository.ComponentSource backed by Records.
type ComponentSource struct {
	mu sync.Mutex

	Records  map[int64]domain.ComponentRecord
	LookupFn func(ctx context.Context, variantIDs []int64) ([]domain.ComponentRecord, error)

	LookupCalls [][]int64
}

// NewComponentSource creates a source holding recs.
func NewComponentSource(recs ...domain.ComponentRecord) *ComponentSource {
	m := &ComponentSource{Records: make(map[int64]domain.ComponentRecord, len(recs))}
	for _, r := range recs {
		m.Records[r.VariantID] = r
	}
	return m
}

func (m *ComponentSource) Lookup(ctx context.Context, variantIDs []int64) ([]domain.ComponentRecord, error) {
	m.mu.Lock()
	m.LookupCalls = append(m.LookupCalls, append([]int64(nil), variantIDs...))
	m.mu.Unlock()
	if m.LookupFn != nil {
		return m.LookupFn(ctx, variantIDs)
	}

	seen := make(map[int64]bool, len(variantIDs))
	var out []domain.ComponentRecord
	for _, id := range variantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if r, ok := m.Records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// ---- RunLock mock ----

var _ repository.RunLock = (*RunLock)(nil)

// RunLock is an in-memory test double for repository.RunLock.
type RunLock struct {
	mu     sync.Mutex
	owners map[domain.RunKind]string

	AcquireFn func(ctx context.Context, kind domain.RunKind, owner string, ttl time.Duration) (bool, error)

	AcquireCalls []domain.RunKind
	ReleaseCalls []domain.RunKind
}

// NewRunLock creates an unlocked run lock.
func NewRunLock() *RunLock {
	return &RunLock{owners: make(map[domain.RunKind]string)}
}

// Hold marks kind as held by owner.
func (m *RunLock) Hold(kind domain.RunKind, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[kind] = owner
}

// Held reports whether kind is currently locked.
func (m *RunLock) Held(kind domain.RunKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.owners[kind]
	return ok
}

func (m *RunLock) Acquire(ctx context.Context, kind domain.RunKind, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	m.AcquireCalls = append(m.AcquireCalls, kind)
	m.mu.Unlock()
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, kind, owner, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.owners[kind]; held {
		return false, nil
	}
	m.owners[kind] = owner
	return true, nil
}

func (m *RunLock) Release(_ context.Context, kind domain.RunKind, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls = append(m.ReleaseCalls, kind)
	if m.owners[kind] == owner {
		delete(m.owners, kind)
	}
	return nil
}
