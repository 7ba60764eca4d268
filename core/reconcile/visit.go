package reconcile

// Visit is a closed interval during which a user is assumed to have stayed in one feature.
type Visit struct {
	// ID is stable for the lifetime of the visit, including across extensions.
	ID string `json:"id"`

	// UserID owns the visit.
	UserID string `json:"userId"`

	// FeatureID is the occupied feature.
	FeatureID string `json:"featureId"`

	// Start is the first sighting. Start <= Finish.
	Start float64 `json:"start"`

	// Finish is the last sighting.
	Finish float64 `json:"finish"`

	// StartBoundary references the snapshot that set Start.
	StartBoundary SnapshotRef `json:"-"`

	// FinishBoundary references the snapshot that set Finish.
	FinishBoundary SnapshotRef `json:"-"`
}

// Covers reports whether t lies in the closed interval [Start, Finish].
func (v Visit) Covers(t float64) bool {
	return v.Start <= t && t <= v.Finish
}

// Straddles reports whether t lies in the open interval (Start, Finish).
func (v Visit) Straddles(t float64) bool {
	return v.Start < t && t < v.Finish
}

// Overlaps reports whether the open interiors of v and o intersect.
// Touching visits and point visits never overlap.
func (v Visit) Overlaps(o Visit) bool {
	return v.Start < o.Finish && o.Start < v.Finish
}

// pointVisit creates a visit covering only the snapshot instant.
func pointVisit(id, featureID string, snap *Snapshot) Visit {
	ref := snap.Ref()
	return Visit{
		ID:             id,
		UserID:         snap.UserID,
		FeatureID:      featureID,
		Start:          snap.Timestamp,
		Finish:         snap.Timestamp,
		StartBoundary:  ref,
		FinishBoundary: ref,
	}
}
