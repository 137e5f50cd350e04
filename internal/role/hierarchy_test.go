package role

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkovalev/deskflow-server/internal/model"
)

func TestHierarchy_Dominates(t *testing.T) {
	h := NewHierarchy()

	want := map[model.Role]map[model.Role]bool{
		model.RoleAdmin: {
			model.RoleAdmin:    true,
			model.RoleEmployee: true,
			model.RoleClient:   true,
		},
		model.RoleEmployee: {
			model.RoleAdmin:    false,
			model.RoleEmployee: true,
			model.RoleClient:   true,
		},
		model.RoleClient: {
			model.RoleAdmin:    false,
			model.RoleEmployee: false,
			model.RoleClient:   true,
		},
	}

	for a, row := range want {
		for b, expected := range row {
			assert.Equal(t, expected, h.Dominates(a, b), "%s dominates %s", a, b)
			assert.Equal(t, expected, h.Satisfies(a, []model.Role{b}), "%s satisfies {%s}", a, b)
		}
	}
}

func TestHierarchy_Satisfies_EmptyRequired(t *testing.T) {
	h := NewHierarchy()

	for _, r := range model.Roles {
		assert.True(t, h.Satisfies(r, nil))
		assert.True(t, h.Satisfies(r, []model.Role{}))
	}
}

func TestHierarchy_Satisfies_AnyOf(t *testing.T) {
	h := NewHierarchy()

	// Employee satisfies a requirement listing admin OR client.
	assert.True(t, h.Satisfies(model.RoleEmployee, []model.Role{model.RoleAdmin, model.RoleClient}))
	// Client does not satisfy a requirement listing only staff roles.
	assert.False(t, h.Satisfies(model.RoleClient, []model.Role{model.RoleAdmin, model.RoleEmployee}))
}

func TestHierarchy_Satisfies_UnknownRole(t *testing.T) {
	h := NewHierarchy()

	assert.False(t, h.Satisfies(model.Role("superuser"), []model.Role{model.RoleClient}))
}
