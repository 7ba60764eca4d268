package reconcile

import "github.com/google/uuid"

// IDGenerator produces fresh visit ids.
type IDGenerator func() string

// UUIDv7 returns time-sortable visit ids.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Changes counts what a single reconciliation did to the index.
type Changes struct {
	// Split counts visits partitioned at the snapshot instant.
	Split int `json:"split"`
	// Extended counts visits whose start or finish moved to the snapshot instant.
	Extended int `json:"extended"`
	// Created counts new point visits.
	Created int `json:"created"`
}

// None reports whether the snapshot was already fully absorbed.
func (c Changes) None() bool {
	return c.Split == 0 && c.Extended == 0 && c.Created == 0
}

// Outcome is the result of reconciling one snapshot.
type Outcome struct {
	Index   *Index
	Changes Changes
}

// Reconciler turns an index and a snapshot into the next index.
// It holds no state besides its id source and is safe for concurrent use
// as long as the generator is.
type Reconciler struct {
	newID IDGenerator
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithIDGenerator overrides the visit id source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Reconciler) {
		r.newID = gen
	}
}

// New creates a Reconciler. Ids default to UUIDv7.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{newID: UUIDv7()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultReconciler = New()

// Apply reconciles snap into idx with the default reconciler.
func Apply(idx *Index, snap *Snapshot) *Index {
	return defaultReconciler.Apply(idx, snap)
}

// Apply returns the index that results from absorbing snap into idx.
// idx itself is left untouched. snap must already be validated.
func (r *Reconciler) Apply(idx *Index, snap *Snapshot) *Index {
	return r.Reconcile(idx, snap).Index
}

// Reconcile runs the split pass for features absent from snap, then the
// extend-or-create pass for features present in it, on a copy of idx.
func (r *Reconciler) Reconcile(idx *Index, snap *Snapshot) Outcome {
	if idx == nil {
		idx = NewIndex(snap.UserID)
	}
	next := idx.Clone()
	var changes Changes

	present := make(map[string]struct{}, len(snap.Features))
	for _, f := range snap.Features {
		present[f.ID] = struct{}{}
	}

	changes.Split = r.split(next, snap, present)

	for _, featureID := range snap.FeatureIDs() {
		switch r.extendOrCreate(next, snap, featureID) {
		case extended:
			changes.Extended++
		case created:
			changes.Created++
		}
	}

	return Outcome{Index: next, Changes: changes}
}

// split partitions every visit of an absent feature whose open interval
// contains the snapshot instant. The first half keeps the id.
func (r *Reconciler) split(idx *Index, snap *Snapshot, present map[string]struct{}) int {
	t := snap.Timestamp
	ref := snap.Ref()
	count := 0

	for _, v := range idx.Visits() {
		if _, ok := present[v.FeatureID]; ok {
			continue
		}
		if !v.Straddles(t) {
			continue
		}

		tail := Visit{
			ID:             r.newID(),
			UserID:         v.UserID,
			FeatureID:      v.FeatureID,
			Start:          t,
			Finish:         v.Finish,
			StartBoundary:  ref,
			FinishBoundary: v.FinishBoundary,
		}

		v.Finish = t
		v.FinishBoundary = ref
		idx.put(v)
		idx.put(tail)
		count++
	}
	return count
}

type pass2Result int

const (
	unchanged pass2Result = iota
	extended
	created
)

func (r *Reconciler) extendOrCreate(idx *Index, snap *Snapshot, featureID string) pass2Result {
	t := snap.Timestamp
	visits := idx.ForFeature(featureID)

	if len(visits) == 0 {
		idx.put(pointVisit(r.newID(), featureID, snap))
		return created
	}

	first, last := visits[0], visits[0]
	for _, v := range visits {
		if v.Covers(t) {
			return unchanged
		}
		if v.Start < first.Start {
			first = v
		}
		if v.Finish > last.Finish {
			last = v
		}
	}

	switch {
	case t > last.Finish:
		if !hasBoundaryBetween(idx, last.Finish, t) {
			last.Finish = t
			last.FinishBoundary = snap.Ref()
			idx.put(last)
			return extended
		}
	case t < first.Start:
		if !hasBoundaryBetween(idx, t, first.Start) {
			first.Start = t
			first.StartBoundary = snap.Ref()
			idx.put(first)
			return extended
		}
	}

	// Intervening boundary, or t falls between two of the feature's own visits.
	idx.put(pointVisit(r.newID(), featureID, snap))
	return created
}

// hasBoundaryBetween reports whether any visit edge of the user lies in the
// open interval (lo, hi).
func hasBoundaryBetween(idx *Index, lo, hi float64) bool {
	for b := range idx.Boundaries() {
		if lo < b && b < hi {
			return true
		}
	}
	return false
}
