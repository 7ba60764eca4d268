package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"visit-tracker/core/reconcile"

	"gorm.io/gorm"
)

// ErrStore marks failures of the visit store.
var ErrStore = errors.New("visit store")

// Store persists each user's visits as one replaceable set.
type Store interface {
	// Load returns the user's visits in index order. Unknown users get an empty index.
	Load(ctx context.Context, userID string) (*reconcile.Index, error)
	// Replace swaps the stored set of idx.UserID() for the visits of idx in one write.
	Replace(ctx context.Context, idx *reconcile.Index) error
	// Reset deletes every visit of the user and returns how many were removed.
	Reset(ctx context.Context, userID string) (int64, error)
	// Users lists every user with at least one stored visit.
	Users(ctx context.Context) ([]string, error)
}

// GormStore is the relational Store.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewStore creates a GormStore. timeout bounds each operation; zero means no bound.
func NewStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

// Migrate creates or updates the visits table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&VisitRecord{}); err != nil {
		return fmt.Errorf("%w: failed to migrate visits table: %v", ErrStore, err)
	}
	return nil
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Load implements Store.
func (s *GormStore) Load(ctx context.Context, userID string) (*reconcile.Index, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var records []VisitRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load visits for %s: %v", ErrStore, userID, err)
	}

	visits := make([]reconcile.Visit, len(records))
	for i, r := range records {
		visits[i] = r.ToVisit()
	}
	return reconcile.NewIndex(userID, visits...), nil
}

// Replace implements Store. The delete and the inserts share one transaction.
func (s *GormStore) Replace(ctx context.Context, idx *reconcile.Index) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	visits := idx.Visits()
	records := make([]VisitRecord, len(visits))
	for i, v := range visits {
		records[i] = NewVisitRecord(v, i)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", idx.UserID()).Delete(&VisitRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 500).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to replace visits for %s: %v", ErrStore, idx.UserID(), err)
	}
	return nil
}

// Reset implements Store.
func (s *GormStore) Reset(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&VisitRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: failed to reset visits for %s: %v", ErrStore, userID, result.Error)
	}
	return result.RowsAffected, nil
}

// Users implements Store.
func (s *GormStore) Users(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var users []string
	err := s.db.WithContext(ctx).
		Model(&VisitRecord{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %v", ErrStore, err)
	}
	return users, nil
}
