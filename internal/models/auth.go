package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account. Role defaults to student server-side.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	StudentID string `json:"studentId,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=student registrar cashier faculty admin"`
}

// AuthResponse returns the issued bearer token and the authenticated user.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// TokenResponse carries a refreshed bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}
