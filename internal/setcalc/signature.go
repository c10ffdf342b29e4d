// Package setcalc holds the pure set composition algorithms: duplicate
// signatures, commercial aggregation, derived pricing and property reconciliation.
package setcalc

import (
	"sort"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// MinComponents is the smallest number of components that forms a set.
const MinComponents = 2

// NormalizeVariantIDs drops non-positive ids, keeps repeats and sorts numerically.
// The input slice is not modified.
func NormalizeVariantIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Signature returns the canonical comma-joined form of a component multiset.
func Signature(ids []int64) string {
	return domain.JoinIDs(NormalizeVariantIDs(ids), ",")
}

// FindDuplicate returns the first existing job whose component multiset equals
// the candidate's, or nil. Candidates with fewer than MinComponents positive ids
// never match. excludeJobID (0 for none) is skipped, which lets an edit ignore
// the job being edited.
func FindDuplicate(candidates []int64, existing []domain.JobSignature, excludeJobID int64) *domain.JobSignature {
	norm := NormalizeVariantIDs(candidates)
	if len(norm) < MinComponents {
		return nil
	}
	needle := domain.JoinIDs(norm, ",")

	for i := range existing {
		e := &existing[i]
		if excludeJobID != 0 && e.JobID == excludeJobID {
			continue
		}
		if e.Count == len(norm) && e.Signature == needle {
			return e
		}
	}
	return nil
}
