package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tandikan/enroll/internal/models"
)

func TestRegistrarApprovesButDoesNotConfirmPayments(t *testing.T) {
	assert.True(t, Can(models.RoleRegistrar, ActionApproveEnrollment))
	assert.True(t, Can(models.RoleRegistrar, ActionRejectEnrollment))
	assert.False(t, Can(models.RoleRegistrar, ActionConfirmPayment))
}

func TestCashierConfirmsButDoesNotApproveEnrollments(t *testing.T) {
	assert.True(t, Can(models.RoleCashier, ActionConfirmPayment))
	assert.True(t, Can(models.RoleCashier, ActionApproveAssessment))
	assert.False(t, Can(models.RoleCashier, ActionApproveEnrollment))
}

func TestStudentScope(t *testing.T) {
	assert.True(t, Can(models.RoleStudent, ActionCreateEnrollment))
	assert.True(t, Can(models.RoleStudent, ActionRecordPayment))
	assert.False(t, Can(models.RoleStudent, ActionApproveEnrollment))
	assert.False(t, Can(models.RoleStudent, ActionConfirmPayment))
}

func TestFacultyIsReadOnly(t *testing.T) {
	assert.Equal(t, []Action{ActionViewEnrollments}, Allowed(models.RoleFaculty))
}

func TestAdminHoldsEveryCapability(t *testing.T) {
	assert.Equal(t, Actions(), Allowed(models.RoleAdmin))
}

func TestEveryDeclaredRoleHasAnEntry(t *testing.T) {
	for _, role := range models.Roles() {
		assert.NotEmpty(t, Allowed(role), "role %s has no capabilities", role)
	}
}

func TestUnknownRoleCanDoNothing(t *testing.T) {
	assert.False(t, Can(models.Role("janitor"), ActionViewEnrollments))
	assert.Nil(t, Allowed(models.Role("janitor")))
}
