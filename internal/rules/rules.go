package rules

import (
	"fmt"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
)

// Rule checks one structural property of a project plan.
type Rule func(models.ProjectPlan) error

func UniqueTaskIDs(plan models.ProjectPlan) error {
	seen := make(map[string]struct{}, len(plan.Tasks))
	for _, task := range plan.Tasks {
		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("%w: %s", agenterrors.ErrDuplicateTaskID, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

func Default() []Rule {
	return []Rule{UniqueTaskIDs}
}

func Validate(plan models.ProjectPlan, ruleSet []Rule) error {
	for _, rule := range ruleSet {
		if err := rule(plan); err != nil {
			return err
		}
	}
	return nil
}
