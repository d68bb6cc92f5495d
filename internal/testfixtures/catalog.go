package testfixtures

import (
	"context"
	"sync"
	"time"

	calendarerrors "washbook/internal/calendar/errors"
	catalogerrors "washbook/internal/catalog/errors"
	"washbook/pkg/model"
)

// Providers is an in-memory provider calendar store.
type Providers struct {
	mu        sync.Mutex
	providers map[string]*model.Provider
}

func NewProviders(providers ...*model.Provider) *Providers {
	p := &Providers{providers: make(map[string]*model.Provider)}
	for _, provider := range providers {
		p.providers[provider.ID] = cloneProvider(provider)
	}
	return p
}

func cloneProvider(p *model.Provider) *model.Provider {
	c := *p
	c.WeeklyHours = append([]model.WorkingHours(nil), p.WeeklyHours...)
	if p.Overrides != nil {
		c.Overrides = make(map[string]model.HoursOverride, len(p.Overrides))
		for k, v := range p.Overrides {
			c.Overrides[k] = v
		}
	}
	return &c
}

func (s *Providers) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, calendarerrors.ErrNotFound
	}
	return cloneProvider(p), nil
}

func (s *Providers) Upsert(ctx context.Context, profile model.ProviderProfile, defaults *model.Provider) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[profile.ID]
	if !ok {
		p = cloneProvider(defaults)
		p.ID = profile.ID
		p.Version = 0
		p.CreatedAt = time.Now().UTC()
		s.providers[p.ID] = p
	}
	p.Name = profile.Name
	if profile.TimeZone != "" {
		p.TimeZone = profile.TimeZone
	}
	if profile.AutoAccept != nil {
		p.AutoAccept = *profile.AutoAccept
	}
	p.UpdatedAt = time.Now().UTC()
	return cloneProvider(p), nil
}

func (s *Providers) UpdateWeeklyHours(ctx context.Context, id string, expectedVersion int64, weekly []model.WorkingHours) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, calendarerrors.ErrNotFound
	}
	if p.Version != expectedVersion {
		return nil, calendarerrors.ErrVersionConflict
	}
	p.WeeklyHours = append([]model.WorkingHours(nil), weekly...)
	p.Version++
	return cloneProvider(p), nil
}

func (s *Providers) SetOverride(ctx context.Context, id, date string, override model.HoursOverride) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, calendarerrors.ErrNotFound
	}
	if p.Overrides == nil {
		p.Overrides = make(map[string]model.HoursOverride)
	}
	p.Overrides[date] = override
	p.Version++
	return cloneProvider(p), nil
}

func (s *Providers) DeleteOverride(ctx context.Context, id, date string) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return nil, calendarerrors.ErrNotFound
	}
	if _, ok := p.Overrides[date]; !ok {
		return nil, calendarerrors.ErrOverrideNotFound
	}
	delete(p.Overrides, date)
	p.Version++
	return cloneProvider(p), nil
}

// Services is an in-memory service read model.
type Services struct {
	mu       sync.Mutex
	services map[string]*model.Service
}

func NewServices(services ...*model.Service) *Services {
	s := &Services{services: make(map[string]*model.Service)}
	for _, svc := range services {
		c := *svc
		s.services[svc.ID] = &c
	}
	return s
}

func (s *Services) FindByID(ctx context.Context, id string) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, catalogerrors.ErrServiceNotFound
	}
	c := *svc
	return &c, nil
}

func (s *Services) Upsert(ctx context.Context, svc *model.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *svc
	s.services[svc.ID] = &c
	return nil
}
