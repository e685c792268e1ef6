package memory

import (
	"context"
	"sync"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
)

// PlanStore holds ingested project plans keyed by name, preserving
// insertion order for listings.
type PlanStore struct {
	mu    sync.RWMutex
	plans map[string]models.ProjectPlan
	order []string
}

func NewPlanStore() *PlanStore {
	return &PlanStore{plans: make(map[string]models.ProjectPlan)}
}

func (s *PlanStore) Save(_ context.Context, plan models.ProjectPlan) error {
	if plan.Name == "" {
		return agenterrors.ErrMissingPlanName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.Name]; exists {
		return agenterrors.ErrPlanExists
	}
	s.plans[plan.Name] = plan
	s.order = append(s.order, plan.Name)
	return nil
}

func (s *PlanStore) List(_ context.Context) ([]models.ProjectPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ProjectPlan, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.plans[name])
	}
	return result, nil
}

func (s *PlanStore) Get(_ context.Context, name string) (models.ProjectPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[name]
	if !ok {
		return models.ProjectPlan{}, agenterrors.ErrNotFound
	}
	return plan, nil
}
