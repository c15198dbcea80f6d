// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/service"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string               `json:"message"`
	Code    string               `json:"code"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

// LoginRequest represents the request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of an authenticated user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToUserResponse converts an identity to its API representation.
func ToUserResponse(identity *model.Identity) UserResponse {
	return UserResponse{ID: identity.UserID, Username: identity.Username}
}

// CreateDonationRequest represents the request body for POST /api/donations.
// project_id and amount accept JSON numbers or numeric strings.
type CreateDonationRequest struct {
	DonorName string `json:"donor_name"`
	ProjectID Number `json:"project_id"`
	Amount    Number `json:"amount"`
}

// ToInput converts the request into service input.
// Unusable numbers become nil so validation reports them per field.
func (r CreateDonationRequest) ToInput() service.CreateDonationInput {
	return service.CreateDonationInput{
		DonorName: r.DonorName,
		ProjectID: r.ProjectID.Int64(),
		Amount:    r.Amount.Float64(),
	}
}

// HealthStatusResponse is the body of GET /api/health.
type HealthStatusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
