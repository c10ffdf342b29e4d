package domain

import "sort"

// RequesterID identifies the operator who requested a set. Only the id is ever
// persisted; the display name is resolved when presenting a job.
type RequesterID int

var requesterNames = map[RequesterID]string{
	8:  "Andreas",
	47: "Emily",
	2:  "Kristin",
	60: "Katrin",
	9:  "Tino",
}

// IsValid reports whether the id belongs to the requester enumeration.
func (r RequesterID) IsValid() bool {
	_, ok := requesterNames[r]
	return ok
}

// Name resolves the display name, or "Unknown".
func (r RequesterID) Name() string {
	if name, ok := requesterNames[r]; ok {
		return name
	}
	return "Unknown"
}

// RequesterInfo describes one entry of the requester enumeration.
type RequesterInfo struct {
	ID   RequesterID `json:"id"`
	Name string      `json:"name"`
}

// Requesters lists the requester enumeration ordered by name.
func Requesters() []RequesterInfo {
	out := make([]RequesterInfo, 0, len(requesterNames))
	for id, name := range requesterNames {
		out = append(out, RequesterInfo{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetTypeInfo describes a known set type token and its label.
type SetTypeInfo struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// SetTypes is the fixed set type lookup table. The label is prepended to the
// merged names of every set of that type.
var SetTypes = []SetTypeInfo{
	{Token: "423;476", Label: "Backofen-Set"},
	{Token: "423;428", Label: "Herdset"},
	{Token: "430;432", Label: "Spülenset"},
	{Token: "mikrowellenset", Label: "Mikrowellenset"},
}

// SetLabel resolves a set type token. Unknown tokens are their own label.
func SetLabel(token string) string {
	for _, t := range SetTypes {
		if t.Token == token {
			return t.Label
		}
	}
	return token
}
