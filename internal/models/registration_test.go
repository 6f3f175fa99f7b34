package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	statuses := []RegistrationStatus{StatusPending, StatusApproved, StatusRejected, "cancelled"}

	allowed := map[[2]RegistrationStatus]bool{
		{StatusPending, StatusApproved}: true,
		{StatusPending, StatusRejected}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[[2]RegistrationStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRegistrationStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, RegistrationStatus("").Valid())
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleRequester.Valid())
	assert.True(t, RoleApprover.Valid())
	assert.True(t, RoleAdministrator.Valid())
	assert.False(t, Role("student").Valid())
}
