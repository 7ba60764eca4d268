package visits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visit-tracker/core/lock"
	"visit-tracker/core/logger"
	"visit-tracker/core/metrics"
	"visit-tracker/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service applies snapshots to stored visit indexes.
// All writes for one user run inside that user's lock, from load to persist.
type Service struct {
	store      Store
	locker     lock.Locker
	logger     *zap.Logger
	reconciler *reconcile.Reconciler
	cache      *Cache
	archive    *Archive
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL sets the read cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = NewCache(ttl)
	}
}

// WithArchive enables the snapshot archive.
func WithArchive(a *Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithReconciler replaces the default reconciler.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(s *Service) {
		s.reconciler = r
	}
}

// WithSnapshotIDs sets the generator for snapshots that arrive without an id.
func WithSnapshotIDs(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// NewService creates a new visits service.
func NewService(store Store, locker lock.Locker, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		locker:     locker,
		logger:     logger,
		reconciler: reconcile.New(),
		cache:      NewCache(0),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// ArchiveEnabled reports whether snapshots are archived.
func (s *Service) ArchiveEnabled() bool {
	return s.archive != nil
}

// Ingest validates snap and folds it into the stored visits of its user.
// Nothing is written when the snapshot was already absorbed.
func (s *Service) Ingest(ctx context.Context, snap *reconcile.Snapshot) (*Result, error) {
	if err := ValidateSnapshot(snap); err != nil {
		metrics.SnapshotsRejected.Inc()
		return nil, err
	}
	if snap.ID == "" {
		snap.ID = s.newID()
	}

	started := time.Now()
	ctx, unlock, err := s.locker.Lock(ctx, snap.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", snap.UserID, err)
	}
	defer unlock()

	l := logger.WithUser(s.logger, snap.UserID)

	idx, err := s.store.Load(ctx, snap.UserID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("load").Inc()
		l.Error("Failed to load visits", zap.Error(err))
		return nil, err
	}

	out := s.reconciler.Reconcile(idx, snap)

	if !out.Changes.None() {
		if err := s.replace(ctx, out.Index); err != nil {
			metrics.StoreErrors.WithLabelValues("replace").Inc()
			l.Error("Failed to persist visits", zap.Error(err))
			return nil, err
		}
		s.cache.Invalidate(snap.UserID)
	}

	s.archiveSnapshot(ctx, snap)

	metrics.SnapshotsIngested.Inc()
	metrics.VisitChanges.WithLabelValues("split").Add(float64(out.Changes.Split))
	metrics.VisitChanges.WithLabelValues("extended").Add(float64(out.Changes.Extended))
	metrics.VisitChanges.WithLabelValues("created").Add(float64(out.Changes.Created))
	metrics.IngestDuration.Observe(time.Since(started).Seconds())

	l.Debug("Snapshot reconciled",
		zap.String("snapshot_id", snap.ID),
		zap.Float64("timestamp", snap.Timestamp),
		zap.Int("split", out.Changes.Split),
		zap.Int("extended", out.Changes.Extended),
		zap.Int("created", out.Changes.Created),
	)

	return &Result{
		SnapshotID: snap.ID,
		UserID:     snap.UserID,
		Visits:     out.Index.Len(),
		Changes:    out.Changes,
	}, nil
}

// replace persists idx unless the user lock held by ctx was lost meanwhile.
func (s *Service) replace(ctx context.Context, idx *reconcile.Index) error {
	if err := context.Cause(ctx); err != nil {
		return fmt.Errorf("lock for user %s no longer held: %w", idx.UserID(), err)
	}
	return s.store.Replace(ctx, idx)
}

// archiveSnapshot writes snap to the archive. Failures are logged only;
// the visits are already committed.
func (s *Service) archiveSnapshot(ctx context.Context, snap *reconcile.Snapshot) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(ctx, snap); err != nil {
		s.logger.Warn("Failed to archive snapshot",
			zap.String("user_id", snap.UserID),
			zap.String("snapshot_id", snap.ID),
			zap.Error(err))
	}
}

// IngestBatch ingests snaps in order. Invalid snapshots are reported per item
// and skipped. A store or lock failure stops the batch and is returned along
// with the items processed so far.
func (s *Service) IngestBatch(ctx context.Context, snaps []*reconcile.Snapshot) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(snaps))
	for i, snap := range snaps {
		item, err := s.ingestItem(ctx, i, snap, nil)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// IngestPayloads decodes and ingests raw intersection payloads in order.
// A payload that does not decode is reported per item like an invalid snapshot.
func (s *Service) IngestPayloads(ctx context.Context, payloads []json.RawMessage) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(payloads))
	for i, payload := range payloads {
		snap, decodeErr := DecodeSnapshot(payload)
		item, err := s.ingestItem(ctx, i, snap, decodeErr)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) ingestItem(ctx context.Context, i int, snap *reconcile.Snapshot, decodeErr error) (BatchItem, error) {
	var res *Result
	err := decodeErr
	if err != nil {
		metrics.SnapshotsRejected.Inc()
	} else {
		res, err = s.Ingest(ctx, snap)
	}

	switch {
	case err == nil:
		return BatchItem{Index: i, Result: res}, nil
	case errors.Is(err, ErrInvalidSnapshot):
		return BatchItem{Index: i, Error: err.Error()}, nil
	default:
		return BatchItem{}, err
	}
}

// Visits returns the stored visits of userID in index order.
func (s *Service) Visits(ctx context.Context, userID string) ([]reconcile.Visit, error) {
	return s.cache.Get(ctx, userID, func(ctx context.Context) ([]reconcile.Visit, error) {
		idx, err := s.store.Load(ctx, userID)
		if err != nil {
			metrics.StoreErrors.WithLabelValues("load").Inc()
			return nil, err
		}
		return idx.Visits(), nil
	})
}

// Reset deletes all visits of userID. With purgeArchive the archived
// snapshots are removed too, so a later rebuild starts from nothing.
func (s *Service) Reset(ctx context.Context, userID string, purgeArchive bool) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: missing userId", ErrInvalidSnapshot)
	}
	if purgeArchive && s.archive == nil {
		return 0, ErrArchiveDisabled
	}

	ctx, unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	defer unlock()

	removed, err := s.store.Reset(ctx, userID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("reset").Inc()
		return 0, err
	}
	s.cache.Invalidate(userID)

	if purgeArchive {
		n, err := s.archive.Purge(ctx, userID)
		if err != nil {
			return removed, err
		}
		s.logger.Info("Purged archived snapshots", zap.String("user_id", userID), zap.Int("count", n))
	}

	s.logger.Info("Visits reset", zap.String("user_id", userID), zap.Int64("removed", removed))
	return removed, nil
}

// Rebuild recomputes the visits of userID by replaying its archived
// snapshots in timestamp order and replacing the stored set in one write.
func (s *Service) Rebuild(ctx context.Context, userID string) (*RebuildResult, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidSnapshot)
	}

	ctx, unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	defer unlock()

	snaps, err := s.archive.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := reconcile.NewIndex(userID)
	for _, snap := range snaps {
		idx = s.reconciler.Apply(idx, snap)
	}

	if err := s.replace(ctx, idx); err != nil {
		metrics.StoreErrors.WithLabelValues("replace").Inc()
		return nil, err
	}
	s.cache.Invalidate(userID)

	s.logger.Info("Visits rebuilt from archive",
		zap.String("user_id", userID),
		zap.Int("snapshots", len(snaps)),
		zap.Int("visits", idx.Len()))

	return &RebuildResult{UserID: userID, Snapshots: len(snaps), Visits: idx.Len()}, nil
}
