package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"solar-sizer/domain"
	"solar-sizer/events"
	"solar-sizer/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockApplicationRepository wraps the memory store and can be told to fail.
type MockApplicationRepository struct {
	*repository.ApplicationRepositoryMemory
	SaveCalled bool
	ForceError bool
}

func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{ApplicationRepositoryMemory: repository.NewApplicationRepositoryMemory()}
}

func (m *MockApplicationRepository) Save(ctx context.Context, app domain.Application) error {
	m.SaveCalled = true
	if m.ForceError {
		return errors.New("save error")
	}
	return m.ApplicationRepositoryMemory.Save(ctx, app)
}

type MockPublisher struct {
	mu         sync.Mutex
	Published  []events.ApplicationSubmitted
	ForceError bool
}

func (m *MockPublisher) PublishApplicationSubmitted(_ context.Context, ev events.ApplicationSubmitted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError {
		return errors.New("publish error")
	}
	m.Published = append(m.Published, ev)
	return nil
}
