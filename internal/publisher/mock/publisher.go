package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/publisher"
)

var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher records published run requests.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.RunRequest
	PublishFn func(ctx context.Context, req *domain.RunRequest) error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, req *domain.RunRequest) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, req)
	}
	m.mu.Lock()
	m.Published = append(m.Published, req)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
