// Package pipeline composes the ordered authorization checks every
// protected procedure runs through. A procedure is defined by its
// descriptor, not by nested conditionals: adding a check never means
// editing existing procedures.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/obs"
	"github.com/dkovalev/deskflow-server/internal/role"
)

// TokenVerifier establishes caller identity from a bearer token.
type TokenVerifier interface {
	VerifyAccess(token string) (model.Principal, error)
}

// AccessEvaluator decides instance-level access.
type AccessEvaluator interface {
	CanAccess(ctx context.Context, principal model.Principal, ref model.ResourceRef, required model.AccessLevel) (bool, error)
}

// Check is an additional business-rule or feature-flag guard layered
// after the three core stages.
type Check func(ctx context.Context, principal model.Principal, input any) error

// ResourceAccess declares the instance-level requirement of a procedure.
type ResourceAccess struct {
	Type          string
	RequiredLevel model.AccessLevel
	ExtractID     func(input any) (string, error)
}

// Procedure describes one protected operation: which roles may call it
// and, optionally, which resource instance it touches.
type Procedure struct {
	Name          string
	RequiredRoles []model.Role
	Resource      *ResourceAccess
	Checks        []Check
}

// Pipeline applies the checks of a procedure strictly in order and
// short-circuits on the first failure: authentication, then role, then
// resource access, then extra checks.
type Pipeline struct {
	verifier  TokenVerifier
	hierarchy *role.Hierarchy
	evaluator AccessEvaluator
	logger    *logger.Logger
}

func New(verifier TokenVerifier, hierarchy *role.Hierarchy, evaluator AccessEvaluator, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		verifier:  verifier,
		hierarchy: hierarchy,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Run executes the procedure's guard chain and returns the verified
// Principal on success. Returned errors are taxonomy sentinels (or an
// *model.EvaluationError); they carry no session internals.
func (p *Pipeline) Run(ctx context.Context, rawToken string, proc Procedure, input any) (model.Principal, error) {
	principal, err := p.verifier.VerifyAccess(rawToken)
	if err != nil {
		obs.IncAuthzDecision("authn", "deny")
		p.logger.Debug("authentication failed",
			"procedure", proc.Name,
			"reason", err.Error())
		return model.Principal{}, model.ErrUnauthenticated
	}
	obs.IncAuthzDecision("authn", "allow")

	if !p.hierarchy.Satisfies(principal.Role, proc.RequiredRoles) {
		obs.IncAuthzDecision("role", "deny")
		p.logger.Info("role check failed",
			"procedure", proc.Name,
			"role", string(principal.Role))
		return model.Principal{}, model.ErrMissingRole
	}
	obs.IncAuthzDecision("role", "allow")

	if proc.Resource != nil {
		resourceID, err := proc.Resource.ExtractID(input)
		if err != nil {
			return model.Principal{}, fmt.Errorf("extract resource id: %w", err)
		}

		ref := model.ResourceRef{Type: proc.Resource.Type, ID: resourceID}
		ok, err := p.evaluator.CanAccess(ctx, principal, ref, proc.Resource.RequiredLevel)
		if err != nil {
			obs.IncAuthzDecision("resource", "error")
			return model.Principal{}, err
		}
		if !ok {
			obs.IncAuthzDecision("resource", "deny")
			p.logger.Info("resource access check failed",
				"procedure", proc.Name,
				"resource_type", ref.Type)
			return model.Principal{}, model.ErrInsufficientAccess
		}
		obs.IncAuthzDecision("resource", "allow")
	}

	for _, check := range proc.Checks {
		if err := check(ctx, principal, input); err != nil {
			obs.IncAuthzDecision("extra", "deny")
			return model.Principal{}, err
		}
	}

	return principal, nil
}
