// Package access decides instance-level permission: whether a principal
// may act on one concrete resource, given the access level the procedure
// requires.
package access

import (
	"context"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/role"
)

// Policy configures evaluation for one resource type.
type Policy struct {
	// UnconditionalRole short-circuits the ownership lookup entirely:
	// any principal whose role dominates it is granted before any store
	// access happens.
	UnconditionalRole model.Role
}

// Evaluator resolves instance-level access decisions. Unknown resource
// types fail closed; lookup failures surface as *model.EvaluationError,
// never as a denial.
type Evaluator struct {
	policies  map[string]Policy
	hierarchy *role.Hierarchy
	ownership model.OwnershipStore
	logger    *logger.Logger
}

func NewEvaluator(policies map[string]Policy, hierarchy *role.Hierarchy, ownership model.OwnershipStore, logger *logger.Logger) *Evaluator {
	return &Evaluator{
		policies:  policies,
		hierarchy: hierarchy,
		ownership: ownership,
		logger:    logger,
	}
}

// DefaultPolicies covers the resource types this server manages.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		model.ResourceTypeRequest: {UnconditionalRole: model.RoleAdmin},
	}
}

// CanAccess reports whether the principal may act on ref at the required
// level. The error return is non-nil only when the decision could not be
// made at all.
func (e *Evaluator) CanAccess(ctx context.Context, principal model.Principal, ref model.ResourceRef, required model.AccessLevel) (bool, error) {
	policy, ok := e.policies[ref.Type]
	if !ok {
		e.logger.Error("access check against unconfigured resource type",
			"resource_type", ref.Type)
		return false, nil
	}

	if e.hierarchy.Dominates(principal.Role, policy.UnconditionalRole) {
		return true, nil
	}

	held, err := e.ownership.LookupOwnership(ctx, ref, principal.SubjectID.String())
	if err != nil {
		return false, &model.EvaluationError{Ref: ref, Err: err}
	}

	return held.Covers(required), nil
}
