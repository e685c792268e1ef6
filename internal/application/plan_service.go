package application

import (
	"context"
	"strings"
	"time"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/ingest"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/ports"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/rules"
	"github.com/rs/zerolog/log"
)

// PlanService ingests, validates and exports project plans.
type PlanService struct {
	store   ports.PlanStore
	ruleSet []rules.Rule
}

func NewPlanService(store ports.PlanStore) *PlanService {
	return &PlanService{store: store, ruleSet: rules.Default()}
}

func (s *PlanService) Ingest(ctx context.Context, name, description string, csvData []byte) (models.ProjectPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ProjectPlan{}, agenterrors.ErrMissingPlanName
	}

	tasks, err := ingest.ReadTasks(csvData)
	if err != nil {
		return models.ProjectPlan{}, err
	}

	plan := models.ProjectPlan{
		Name:        name,
		Description: strings.TrimSpace(description),
		Tasks:       tasks,
		CreatedAt:   time.Now().UTC(),
	}
	if err := rules.Validate(plan, s.ruleSet); err != nil {
		return models.ProjectPlan{}, err
	}
	if err := s.store.Save(ctx, plan); err != nil {
		return models.ProjectPlan{}, err
	}

	log.Info().Str("plan", name).Int("tasks", len(tasks)).Msg("ingested project plan")
	return plan, nil
}

func (s *PlanService) List(ctx context.Context) ([]models.ProjectPlan, error) {
	return s.store.List(ctx)
}

func (s *PlanService) Get(ctx context.Context, name string) (models.ProjectPlan, error) {
	return s.store.Get(ctx, name)
}

func (s *PlanService) ExportCSV(ctx context.Context, name string) ([]byte, error) {
	plan, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return ingest.WriteTasks(plan.Tasks)
}
