package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// responseWrapper is the success envelope for every user endpoint.
type responseWrapper struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
}

// --- Request / Response types ---

// userRequest is the body of both create and update. On update the username
// selects the active user; id is accepted for compatibility and ignored.
type userRequest struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"   validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"   validate:"required"`
	Enabled   *bool  `json:"enabled"`
	Role      string `json:"role"       validate:"required"`
	Gender    string `json:"gender"     validate:"omitempty,oneof=Male Female"`
}

type roleResponse struct {
	Description string `json:"description"`
}

type userResponse struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Enabled   bool         `json:"enabled"`
	IsDeleted bool         `json:"is_deleted,omitempty"`
	Role      roleResponse `json:"role"`
	Gender    string       `json:"gender,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type mirrorFailureResponse struct {
	Username string    `json:"username"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
