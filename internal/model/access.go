package model

import "context"

// AccessLevel qualifies how broadly a principal may touch instances of a
// resource type. Levels are ordered: None < Own < Assigned < All.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessOwn
	AccessAssigned
	AccessAll
)

// Covers reports whether a held level is sufficient for a required one.
func (l AccessLevel) Covers(required AccessLevel) bool {
	return l >= required
}

func (l AccessLevel) String() string {
	switch l {
	case AccessNone:
		return "none"
	case AccessOwn:
		return "own"
	case AccessAssigned:
		return "assigned"
	case AccessAll:
		return "all"
	}
	return "unknown"
}

// ResourceRef identifies the concrete instance an action targets.
type ResourceRef struct {
	Type string
	ID   string
}

// OwnershipStore resolves the access level a subject actually holds for a
// specific resource instance. The result is trusted for one decision only.
type OwnershipStore interface {
	LookupOwnership(ctx context.Context, ref ResourceRef, subjectID string) (AccessLevel, error)
}
