package models

import "time"

// EnrolledSubjectStatus is the lifecycle of one subject inside an enrollment.
type EnrolledSubjectStatus string

const (
	SubjectStatusEnrolled  EnrolledSubjectStatus = "enrolled"
	SubjectStatusDropped   EnrolledSubjectStatus = "dropped"
	SubjectStatusCompleted EnrolledSubjectStatus = "completed"
)

// EnrolledSubject binds a Schedule to a student's Enrollment. Grade is only
// populated after completion.
type EnrolledSubject struct {
	ID         int64                 `json:"id"`
	Schedule   Schedule              `json:"schedule"`
	EnrolledAt time.Time             `json:"enrolledAt"`
	Grade      *float64              `json:"grade,omitempty"`
	Status     EnrolledSubjectStatus `json:"status"`
}

// EnrollmentStatus is the lifecycle of an enrollment: pending -> approved
// -> completed, or pending -> rejected (terminal).
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusApproved  EnrollmentStatus = "approved"
	EnrollmentStatusRejected  EnrollmentStatus = "rejected"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment owns the subjects a student registered for one academic term.
// TotalUnits is the server-maintained sum of active constituent units.
// ApprovedAt is set exactly once, on the pending -> approved transition.
type Enrollment struct {
	ID              int64             `json:"id"`
	Student         int64             `json:"student"`
	AcademicYear    string            `json:"academicYear"`
	Semester        int               `json:"semester"`
	Subjects        []EnrolledSubject `json:"subjects"`
	TotalUnits      int               `json:"totalUnits"`
	Status          EnrollmentStatus  `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	ApprovedAt      *time.Time        `json:"approvedAt,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// ActiveSubjects returns the subjects still counted toward the enrollment.
func (e Enrollment) ActiveSubjects() []EnrolledSubject {
	out := make([]EnrolledSubject, 0, len(e.Subjects))
	for _, s := range e.Subjects {
		if s.Status != SubjectStatusDropped {
			out = append(out, s)
		}
	}
	return out
}

// CreateEnrollmentRequest submits the selected schedule set for a term.
type CreateEnrollmentRequest struct {
	AcademicYear string  `json:"academicYear" validate:"required"`
	Semester     int     `json:"semester" validate:"required,min=1,max=3"`
	ScheduleIDs  []int64 `json:"scheduleIds" validate:"required,min=1,unique"`
}

// UpdateEnrollmentRequest replaces the schedule set of a pending enrollment.
type UpdateEnrollmentRequest struct {
	ScheduleIDs []int64 `json:"scheduleIds" validate:"required,min=1,unique"`
}

// RejectEnrollmentRequest carries the mandatory rejection reason.
type RejectEnrollmentRequest struct {
	Reason string `json:"reason" validate:"required"`
}
