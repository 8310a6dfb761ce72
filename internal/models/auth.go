package models

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is what the backend login returns once normalized.
type LoginResult struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Token  string `json:"-"` // backend token, if any
}

// RegisterInput is the registration form relayed to the backend.
type RegisterInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Gender   string `json:"gender"`
	AgeGroup string `json:"age_group"`
}

// AuthResponse is returned to the client after login.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}
