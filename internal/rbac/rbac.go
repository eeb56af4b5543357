// Package rbac maps roles to the operations they may perform. Dispatch goes
// through a closed capability table instead of scattered role conditionals.
package rbac

import "github.com/tandikan/enroll/internal/models"

// Action names one guarded operation.
type Action string

const (
	ActionViewEnrollments   Action = "enrollments.view"
	ActionCreateEnrollment  Action = "enrollments.create"
	ActionApproveEnrollment Action = "enrollments.approve"
	ActionRejectEnrollment  Action = "enrollments.reject"
	ActionDropSubject       Action = "enrollments.drop_subject"
	ActionViewAssessments   Action = "assessments.view"
	ActionCreateAssessment  Action = "assessments.create"
	ActionApproveAssessment Action = "assessments.approve"
	ActionRecordPayment     Action = "payments.record"
	ActionConfirmPayment    Action = "payments.confirm"
	ActionViewPayments      Action = "payments.view"
)

// Actions lists every declared action.
func Actions() []Action {
	return []Action{
		ActionViewEnrollments,
		ActionCreateEnrollment,
		ActionApproveEnrollment,
		ActionRejectEnrollment,
		ActionDropSubject,
		ActionViewAssessments,
		ActionCreateAssessment,
		ActionApproveAssessment,
		ActionRecordPayment,
		ActionConfirmPayment,
		ActionViewPayments,
	}
}

// capabilities is the closed role -> action table. Students act on their own
// records (scoping is enforced server-side); faculty sees enrollments but
// mutates nothing; admin holds every capability.
var capabilities = map[models.Role]map[Action]struct{}{
	models.RoleStudent: actionSet(
		ActionViewEnrollments,
		ActionCreateEnrollment,
		ActionDropSubject,
		ActionViewAssessments,
		ActionRecordPayment,
		ActionViewPayments,
	),
	models.RoleRegistrar: actionSet(
		ActionViewEnrollments,
		ActionApproveEnrollment,
		ActionRejectEnrollment,
		ActionDropSubject,
		ActionViewAssessments,
		ActionCreateAssessment,
		ActionApproveAssessment,
	),
	models.RoleCashier: actionSet(
		ActionViewEnrollments,
		ActionViewAssessments,
		ActionApproveAssessment,
		ActionRecordPayment,
		ActionConfirmPayment,
		ActionViewPayments,
	),
	models.RoleFaculty: actionSet(
		ActionViewEnrollments,
	),
	models.RoleAdmin: actionSet(Actions()...),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Can reports whether role may perform action. Unknown roles can do nothing.
func Can(role models.Role, action Action) bool {
	allowed, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = allowed[action]
	return ok
}

// Allowed returns the actions role may perform, in declaration order.
func Allowed(role models.Role) []Action {
	set, ok := capabilities[role]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(set))
	for _, a := range Actions() {
		if _, ok := set[a]; ok {
			out = append(out, a)
		}
	}
	return out
}
