package repository

import (
	"context"
	"sort"
	"sync"

	"solar-sizer/domain"
)

// ApplicationRepositoryMemory is an in-memory implementation of ApplicationRepository.
type ApplicationRepositoryMemory struct {
	mu   sync.RWMutex
	data map[string]domain.Application
}

// NewApplicationRepositoryMemory creates a new in-memory application repository.
func NewApplicationRepositoryMemory() *ApplicationRepositoryMemory {
	return &ApplicationRepositoryMemory{
		data: make(map[string]domain.Application),
	}
}

func (r *ApplicationRepositoryMemory) Save(_ context.Context, app domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.data[app.Number]; ok && !prev.CreatedAt.IsZero() {
		app.CreatedAt = prev.CreatedAt
	}
	app.Appliances = append(domain.ApplianceList(nil), app.Appliances...)
	r.data[app.Number] = app
	return nil
}

func (r *ApplicationRepositoryMemory) Get(_ context.Context, number string) (domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.data[number]
	if !ok {
		return domain.Application{}, ErrNotFound
	}
	return app, nil
}

func (r *ApplicationRepositoryMemory) List(_ context.Context) ([]domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Application, 0, len(r.data))
	for _, app := range r.data {
		out = append(out, app)
	}
	sortApplications(out)
	return out, nil
}

// sortApplications orders by creation time, then number.
func sortApplications(apps []domain.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if !apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].CreatedAt.Before(apps[j].CreatedAt)
		}
		return apps[i].Number < apps[j].Number
	})
}

func (r *ApplicationRepositoryMemory) delete(number string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, number)
}
