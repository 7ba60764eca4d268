package integrity

import (
	"context"

	"visit-tracker/feature/integrity/checks"
	"visit-tracker/feature/visits"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	store  visits.Store
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(store visits.Store, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		db:     db,
		logger: logger,
	}
}

// CheckVisits validates the stored visits of userID, or of every user when userID is empty.
func (s *Service) CheckVisits(ctx context.Context, userID string) (*checks.VisitsReport, error) {
	if userID == "" {
		return checks.CheckVisits(ctx, s.store)
	}
	return checks.CheckVisits(ctx, s.store, userID)
}

// CheckServer verifies the database schema against the persisted models.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.db, visits.VisitRecord{})
}
