package api

import (
	"context"
	"net/http"

	"unimart/internal/identity"
)

// AuthAPI covers login and registration. These are the only calls issued
// without a session.
type AuthAPI struct {
	c *Client
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the backend's login envelope. Data carries the profile
// the session persists as userData.
type LoginResponse struct {
	Success bool             `json:"success"`
	Role    string           `json:"role"`
	Token   string           `json:"token"`
	Data    identity.Profile `json:"data"`
}

// Login authenticates against the backend. The caller hands the result to
// session.Manager.Login; nothing is persisted here.
func (a *AuthAPI) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := a.c.validateRequest(req); err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := a.c.doJSON(ctx, http.MethodPost, a.c.cfg.AuthBaseURL+"/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type StudentRegistration struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Department  string `json:"department,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// RegisterStudent signs up a new student account.
func (a *AuthAPI) RegisterStudent(ctx context.Context, reg StudentRegistration) error {
	if err := a.c.validateRequest(reg); err != nil {
		return err
	}
	return a.c.doJSON(ctx, http.MethodPost, a.c.cfg.AuthBaseURL+"/auth/register/student", reg, nil)
}
