package reconcile

// Index holds one user's visits.
// Visits live in an arena addressed by id; order records insertion order.
// Callers only ever receive copies of the stored values.
type Index struct {
	userID string
	order  []string
	visits map[string]Visit
}

// NewIndex builds an index for userID from visits in the given order.
// A later visit with a duplicate id replaces the earlier one in place.
func NewIndex(userID string, visits ...Visit) *Index {
	idx := &Index{
		userID: userID,
		order:  make([]string, 0, len(visits)),
		visits: make(map[string]Visit, len(visits)),
	}
	for _, v := range visits {
		idx.put(v)
	}
	return idx
}

// UserID returns the owner of the index.
func (idx *Index) UserID() string {
	return idx.userID
}

// Len returns the number of visits.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Get returns the visit stored under id.
func (idx *Index) Get(id string) (Visit, bool) {
	v, ok := idx.visits[id]
	return v, ok
}

// Visits returns all visits in insertion order.
func (idx *Index) Visits() []Visit {
	out := make([]Visit, len(idx.order))
	for i, id := range idx.order {
		out[i] = idx.visits[id]
	}
	return out
}

// ForFeature returns the visits of featureID in insertion order.
func (idx *Index) ForFeature(featureID string) []Visit {
	var out []Visit
	for _, id := range idx.order {
		if v := idx.visits[id]; v.FeatureID == featureID {
			out = append(out, v)
		}
	}
	return out
}

// Boundaries returns the set of every start and finish timestamp of the user.
func (idx *Index) Boundaries() map[float64]struct{} {
	set := make(map[float64]struct{}, 2*len(idx.visits))
	for _, v := range idx.visits {
		set[v.Start] = struct{}{}
		set[v.Finish] = struct{}{}
	}
	return set
}

// Clone returns an independent copy of the index.
func (idx *Index) Clone() *Index {
	c := &Index{
		userID: idx.userID,
		order:  make([]string, len(idx.order)),
		visits: make(map[string]Visit, len(idx.visits)),
	}
	copy(c.order, idx.order)
	for id, v := range idx.visits {
		c.visits[id] = v
	}
	return c
}

// put stores v. An existing entry keeps its position.
func (idx *Index) put(v Visit) {
	if _, ok := idx.visits[v.ID]; !ok {
		idx.order = append(idx.order, v.ID)
	}
	idx.visits[v.ID] = v
}
