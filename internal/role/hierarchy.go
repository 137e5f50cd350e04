// Package role implements the static role dominance lattice. The closure
// is computed once at init and is safe for unsynchronized concurrent reads.
package role

import "github.com/dkovalev/deskflow-server/internal/model"

// Hierarchy maps every role to the full set of roles it dominates,
// including itself. Checks are O(1) set membership, never a graph walk.
type Hierarchy struct {
	dominates map[model.Role]map[model.Role]struct{}
}

// NewHierarchy builds the precomputed closure for the fixed role set:
// admin dominates employee and client, employee dominates client, client
// dominates only itself.
func NewHierarchy() *Hierarchy {
	parents := map[model.Role][]model.Role{
		model.RoleAdmin:    {model.RoleEmployee},
		model.RoleEmployee: {model.RoleClient},
		model.RoleClient:   {},
	}

	closure := make(map[model.Role]map[model.Role]struct{}, len(parents))
	for r := range parents {
		set := map[model.Role]struct{}{r: {}}
		stack := append([]model.Role(nil), parents[r]...)
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := set[next]; seen {
				continue
			}
			set[next] = struct{}{}
			stack = append(stack, parents[next]...)
		}
		closure[r] = set
	}

	return &Hierarchy{dominates: closure}
}

// Satisfies reports whether caller dominates at least one of the required
// roles. An empty required set means no restriction and always satisfies.
func (h *Hierarchy) Satisfies(caller model.Role, required []model.Role) bool {
	if len(required) == 0 {
		return true
	}

	dominated, ok := h.dominates[caller]
	if !ok {
		return false
	}

	for _, r := range required {
		if _, ok := dominated[r]; ok {
			return true
		}
	}
	return false
}

// Dominates reports whether a dominates b in the lattice.
func (h *Hierarchy) Dominates(a, b model.Role) bool {
	dominated, ok := h.dominates[a]
	if !ok {
		return false
	}
	_, ok = dominated[b]
	return ok
}
