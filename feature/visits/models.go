package visits

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"visit-tracker/core/reconcile"
)

// ErrInvalidSnapshot marks snapshots rejected before reconciliation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// VisitRecord is the persisted form of a visit.
type VisitRecord struct {
	ID               string    `gorm:"column:id;type:varchar(64);primaryKey"`
	UserID           string    `gorm:"column:user_id;type:varchar(128);not null;index:idx_visits_user_position,priority:1"`
	FeatureID        string    `gorm:"column:feature_id;type:varchar(128);not null"`
	Start            float64   `gorm:"column:start;type:double;not null"`
	Finish           float64   `gorm:"column:finish;type:double;not null"`
	StartSnapshotID  string    `gorm:"column:start_snapshot_id;type:varchar(64)"`
	FinishSnapshotID string    `gorm:"column:finish_snapshot_id;type:varchar(64)"`
	Position         int       `gorm:"column:position;not null;index:idx_visits_user_position,priority:2"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (VisitRecord) TableName() string {
	return "visits"
}

// ToVisit converts the record back to a domain visit.
// Boundary references are rebuilt from the stored snapshot ids and edges.
func (r VisitRecord) ToVisit() reconcile.Visit {
	return reconcile.Visit{
		ID:             r.ID,
		UserID:         r.UserID,
		FeatureID:      r.FeatureID,
		Start:          r.Start,
		Finish:         r.Finish,
		StartBoundary:  reconcile.SnapshotRef{ID: r.StartSnapshotID, Timestamp: r.Start},
		FinishBoundary: reconcile.SnapshotRef{ID: r.FinishSnapshotID, Timestamp: r.Finish},
	}
}

// NewVisitRecord converts a visit at the given index position.
func NewVisitRecord(v reconcile.Visit, position int) VisitRecord {
	return VisitRecord{
		ID:               v.ID,
		UserID:           v.UserID,
		FeatureID:        v.FeatureID,
		Start:            v.Start,
		Finish:           v.Finish,
		StartSnapshotID:  v.StartBoundary.ID,
		FinishSnapshotID: v.FinishBoundary.ID,
		Position:         position,
	}
}

// IntersectionRequest is one snapshot as posted by clients.
type IntersectionRequest struct {
	ID        string              `json:"id,omitempty"`
	UserID    string              `json:"userId"`
	Features  []reconcile.Feature `json:"features"`
	Timestamp *float64            `json:"timestamp"`
}

// ToSnapshot validates the request and builds the snapshot. raw is kept as the payload.
func (r IntersectionRequest) ToSnapshot(raw json.RawMessage) (*reconcile.Snapshot, error) {
	if r.Timestamp == nil {
		return nil, fmt.Errorf("%w: missing timestamp", ErrInvalidSnapshot)
	}
	snap := &reconcile.Snapshot{
		ID:        r.ID,
		UserID:    r.UserID,
		Features:  r.Features,
		Timestamp: *r.Timestamp,
		Raw:       raw,
	}
	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// DecodeSnapshot parses a single intersection payload.
func DecodeSnapshot(data []byte) (*reconcile.Snapshot, error) {
	var req IntersectionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return req.ToSnapshot(json.RawMessage(data))
}

// ValidateSnapshot rejects snapshots the reconciler must never see.
func ValidateSnapshot(snap *reconcile.Snapshot) error {
	switch {
	case snap == nil:
		return fmt.Errorf("%w: empty snapshot", ErrInvalidSnapshot)
	case snap.UserID == "":
		return fmt.Errorf("%w: missing userId", ErrInvalidSnapshot)
	case math.IsNaN(snap.Timestamp) || math.IsInf(snap.Timestamp, 0):
		return fmt.Errorf("%w: timestamp is not finite", ErrInvalidSnapshot)
	case len(snap.Features) == 0:
		return fmt.Errorf("%w: features must not be empty", ErrInvalidSnapshot)
	}
	for i, f := range snap.Features {
		if f.ID == "" {
			return fmt.Errorf("%w: feature %d has no id", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// VisitView is the outward projection of a visit.
type VisitView struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	FeatureID string  `json:"featureId"`
	Start     float64 `json:"start"`
	Finish    float64 `json:"finish"`
}

// NewVisitViews projects visits for API and CLI output.
func NewVisitViews(visits []reconcile.Visit) []VisitView {
	out := make([]VisitView, len(visits))
	for i, v := range visits {
		out[i] = VisitView{ID: v.ID, UserID: v.UserID, FeatureID: v.FeatureID, Start: v.Start, Finish: v.Finish}
	}
	return out
}

// VisitsResponse lists one user's visits.
type VisitsResponse struct {
	UserID string      `json:"userId"`
	Visits []VisitView `json:"visits"`
}

// Result reports what ingesting one snapshot did.
type Result struct {
	SnapshotID string            `json:"snapshotId"`
	UserID     string            `json:"userId"`
	Visits     int               `json:"visits"`
	Changes    reconcile.Changes `json:"changes"`
}

// BatchItem is the per-snapshot outcome of a batch ingestion.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// RebuildResult reports a replay from the archive.
type RebuildResult struct {
	UserID    string `json:"userId"`
	Snapshots int    `json:"snapshots"`
	Visits    int    `json:"visits"`
}
