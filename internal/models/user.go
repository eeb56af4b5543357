package models

import "time"

// User is an authenticated account. One role per user; identity is immutable
// on the client side and only refreshed through re-authentication.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	StudentID string    `json:"studentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FullName joins the name parts for display.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// StudentStatus is the lifecycle of a student profile.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)

// Student is the registrar-side profile behind a student account.
type Student struct {
	ID          int64         `json:"id"`
	StudentID   string        `json:"studentId"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	MiddleName  string        `json:"middleName,omitempty"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	DateOfBirth string        `json:"dateOfBirth,omitempty"`
	Address     string        `json:"address,omitempty"`
	YearLevel   int           `json:"yearLevel"`
	Program     string        `json:"program"`
	Status      StudentStatus `json:"status"`
	EnrolledAt  time.Time     `json:"enrolledAt"`
}
