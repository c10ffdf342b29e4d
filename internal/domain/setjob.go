package domain

import (
	"time"
)

// SetJobStatus represents the lifecycle state of a set job.
type SetJobStatus string

const (
	// StatusUnset is a job row whose status column is NULL. It behaves like StatusOpen.
	StatusUnset                SetJobStatus = ""
	StatusOpen                 SetJobStatus = "OPEN"
	StatusWaitingForComponents SetJobStatus = "WAITING_FOR_COMPONENTS"
	StatusComponentsAdded      SetJobStatus = "COMPONENTS_ADDED"
	StatusError                SetJobStatus = "ERROR"
)

// Effective maps the NULL status onto StatusOpen.
func (s SetJobStatus) Effective() SetJobStatus {
	if s == StatusUnset {
		return StatusOpen
	}
	return s
}

// IsValid reports whether s is a known status (including the NULL status).
func (s SetJobStatus) IsValid() bool {
	switch s {
	case StatusUnset, StatusOpen, StatusWaitingForComponents, StatusComponentsAdded, StatusError:
		return true
	}
	return false
}

// IsTerminal returns true once no scheduled process will move the job any further.
func (s SetJobStatus) IsTerminal() bool {
	switch s {
	case StatusComponentsAdded, StatusError:
		return true
	}
	return false
}

// Aggregatable reports whether the aggregation run may select a job in this state.
func (s SetJobStatus) Aggregatable() bool {
	return s.Effective() == StatusOpen
}

// Editable reports whether an operator edit is accepted. Editing an errored job
// is the only way back to StatusOpen.
func (s SetJobStatus) Editable() bool {
	switch s.Effective() {
	case StatusOpen, StatusError:
		return true
	}
	return false
}

// Importable reports whether an import row may be applied to a job in this state.
func (s SetJobStatus) Importable() bool {
	return s == StatusWaitingForComponents
}

// SetJobItem is one ordered component reference of a set job.
type SetJobItem struct {
	VariantID int64 `json:"variant_id"`
	SortIndex int   `json:"sort_index"`
}

// SetJob is one requested set: an ordered list of component variants that is
// merged into a single product.
type SetJob struct {
	ID           int64        `json:"id"`
	RequestedBy  RequesterID  `json:"requested_by"`
	SetType      string       `json:"set_type"`
	Status       SetJobStatus `json:"status"`
	NewItemID    *int64       `json:"new_item_id,omitempty"`
	NewVariantID *int64       `json:"new_variant_id,omitempty"`
	Barcode      *string      `json:"barcode,omitempty"`
	LastError    *string      `json:"last_error,omitempty"`
	Items        []SetJobItem `json:"items"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// VariantIDs returns the component variant ids in sort order.
func (j *SetJob) VariantIDs() []int64 {
	ids := make([]int64, len(j.Items))
	for i, it := range j.Items {
		ids[i] = it.VariantID
	}
	return ids
}

// NewItems builds a dense 0..N-1 item list from variant ids in the given order.
func NewItems(variantIDs []int64) []SetJobItem {
	items := make([]SetJobItem, len(variantIDs))
	for i, id := range variantIDs {
		items[i] = SetJobItem{VariantID: id, SortIndex: i}
	}
	return items
}

// JobSignature is the canonical component multiset of one stored job.
type JobSignature struct {
	JobID        int64
	NewVariantID *int64
	Count        int
	Signature    string
}

// SetJobRequest is the intake payload for creating or editing a set job.
type SetJobRequest struct {
	RequestedBy RequesterID `json:"requested_by" binding:"required"`
	SetType     string      `json:"set_type" binding:"required"`
	VariantIDs  []int64     `json:"variant_ids" binding:"required"`
}

// SetJobView is a set job as presented to operators, with the requester name resolved.
type SetJobView struct {
	*SetJob
	RequestedByName string `json:"requested_by_name"`
	SetLabel        string `json:"set_label"`
}

// NewSetJobView resolves presentation-only fields for a job.
func NewSetJobView(job *SetJob) *SetJobView {
	return &SetJobView{
		SetJob:          job,
		RequestedByName: job.RequestedBy.Name(),
		SetLabel:        SetLabel(job.SetType),
	}
}
