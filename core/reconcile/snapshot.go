package reconcile

import "encoding/json"

// Feature is one entry of a snapshot's feature list.
// Only ID is interpreted; Attributes are carried through untouched.
type Feature struct {
	// ID identifies the geographic feature.
	ID string `json:"id"`

	// Attributes holds any other fields sent along with the feature.
	Attributes map[string]any `json:"-"`
}

// UnmarshalJSON keeps every non-id field of the feature object in Attributes.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := raw["id"].(string); ok {
		f.ID = id
	}
	delete(raw, "id")
	if len(raw) > 0 {
		f.Attributes = raw
	}
	return nil
}

// MarshalJSON writes the feature back with its passthrough attributes.
func (f Feature) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Attributes)+1)
	for k, v := range f.Attributes {
		out[k] = v
	}
	out["id"] = f.ID
	return json.Marshal(out)
}

// Snapshot states which features a user occupies at one instant.
type Snapshot struct {
	// ID identifies the snapshot. It is referenced by visit boundaries.
	ID string `json:"id"`

	// UserID is the user the snapshot belongs to.
	UserID string `json:"userId"`

	// Features lists the occupied features in reported order.
	Features []Feature `json:"features"`

	// Timestamp is the epoch time of the sighting. Snapshots may arrive out of order.
	Timestamp float64 `json:"timestamp"`

	// Raw is the payload as received, kept for the archive.
	Raw json.RawMessage `json:"-"`
}

// FeatureIDs returns the feature ids in listed order.
func (s *Snapshot) FeatureIDs() []string {
	ids := make([]string, len(s.Features))
	for i, f := range s.Features {
		ids[i] = f.ID
	}
	return ids
}

// Ref returns the boundary reference for this snapshot.
func (s *Snapshot) Ref() SnapshotRef {
	return SnapshotRef{ID: s.ID, Timestamp: s.Timestamp}
}

// SnapshotRef is the value a visit keeps for the snapshot that set one of its edges.
type SnapshotRef struct {
	ID        string  `json:"id"`
	Timestamp float64 `json:"timestamp"`
}
