package reconcile

import "fmt"

// Violation describes an index that breaks a visit invariant.
type Violation struct {
	UserID    string   `json:"user_id"`
	FeatureID string   `json:"feature_id"`
	VisitIDs  []string `json:"visit_ids"`
	Reason    string   `json:"reason"`
}

// Validate checks that every visit has start <= finish, that boundaries
// match their edges and that no two visits of one feature overlap.
func Validate(idx *Index) []Violation {
	var out []Violation
	byFeature := make(map[string][]Visit)
	var features []string

	for _, v := range idx.Visits() {
		if v.Start > v.Finish {
			out = append(out, Violation{
				UserID:    idx.UserID(),
				FeatureID: v.FeatureID,
				VisitIDs:  []string{v.ID},
				Reason:    fmt.Sprintf("start %v after finish %v", v.Start, v.Finish),
			})
		}
		if v.StartBoundary.ID != "" && v.StartBoundary.Timestamp != v.Start {
			out = append(out, Violation{
				UserID:    idx.UserID(),
				FeatureID: v.FeatureID,
				VisitIDs:  []string{v.ID},
				Reason:    fmt.Sprintf("start boundary at %v, start at %v", v.StartBoundary.Timestamp, v.Start),
			})
		}
		if v.FinishBoundary.ID != "" && v.FinishBoundary.Timestamp != v.Finish {
			out = append(out, Violation{
				UserID:    idx.UserID(),
				FeatureID: v.FeatureID,
				VisitIDs:  []string{v.ID},
				Reason:    fmt.Sprintf("finish boundary at %v, finish at %v", v.FinishBoundary.Timestamp, v.Finish),
			})
		}
		if _, seen := byFeature[v.FeatureID]; !seen {
			features = append(features, v.FeatureID)
		}
		byFeature[v.FeatureID] = append(byFeature[v.FeatureID], v)
	}

	for _, featureID := range features {
		visits := byFeature[featureID]
		for i := 0; i < len(visits); i++ {
			for j := i + 1; j < len(visits); j++ {
				if visits[i].Overlaps(visits[j]) {
					out = append(out, Violation{
						UserID:    idx.UserID(),
						FeatureID: featureID,
						VisitIDs:  []string{visits[i].ID, visits[j].ID},
						Reason: fmt.Sprintf("[%v,%v] overlaps [%v,%v]",
							visits[i].Start, visits[i].Finish, visits[j].Start, visits[j].Finish),
					})
				}
			}
		}
	}
	return out
}
