package checks

import (
	"context"
	"fmt"

	"visit-tracker/core/reconcile"
	"visit-tracker/feature/visits"
)

// VisitsReport is the result of validating stored visit indexes.
type VisitsReport struct {
	Matched    bool                  `json:"matched"`
	Users      int                   `json:"users"`
	Visits     int                   `json:"visits"`
	Violations []reconcile.Violation `json:"violations"`
	Errors     []string              `json:"errors"`
}

// CheckVisits loads the index of each user and validates it.
// An empty userIDs checks every user known to the store.
func CheckVisits(ctx context.Context, store visits.Store, userIDs ...string) (*VisitsReport, error) {
	if store == nil {
		return nil, fmt.Errorf("visit store is nil")
	}

	if len(userIDs) == 0 {
		users, err := store.Users(ctx)
		if err != nil {
			return nil, err
		}
		userIDs = users
	}

	report := &VisitsReport{
		Matched:    true,
		Violations: []reconcile.Violation{},
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		idx, err := store.Load(ctx, userID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to load visits of %s: %v", userID, err))
			report.Matched = false
			continue
		}

		report.Users++
		report.Visits += idx.Len()
		if violations := reconcile.Validate(idx); len(violations) > 0 {
			report.Violations = append(report.Violations, violations...)
			report.Matched = false
		}
	}

	return report, nil
}
