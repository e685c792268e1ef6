package memory

import (
	"context"
	"testing"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestPlanStoreSaveAndGet(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()

	plan := models.ProjectPlan{Name: "q3-launch", Tasks: []models.Task{{ID: "T1", Name: "Kickoff"}}}
	assert.NoError(t, store.Save(ctx, plan))

	got, err := store.Get(ctx, "q3-launch")
	assert.NoError(t, err)
	assert.Equal(t, "q3-launch", got.Name)
	assert.Len(t, got.Tasks, 1)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, agenterrors.ErrNotFound)
}

func TestPlanStoreRejectsDuplicatesAndEmptyNames(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, models.ProjectPlan{}), agenterrors.ErrMissingPlanName)

	assert.NoError(t, store.Save(ctx, models.ProjectPlan{Name: "dup"}))
	assert.ErrorIs(t, store.Save(ctx, models.ProjectPlan{Name: "dup"}), agenterrors.ErrPlanExists)
}

func TestPlanStoreListPreservesInsertionOrder(t *testing.T) {
	store := NewPlanStore()
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		assert.NoError(t, store.Save(ctx, models.ProjectPlan{Name: name}))
	}

	plans, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, plans, 3)
	assert.Equal(t, "alpha", plans[0].Name)
	assert.Equal(t, "beta", plans[1].Name)
	assert.Equal(t, "gamma", plans[2].Name)
}
