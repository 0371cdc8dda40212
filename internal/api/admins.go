package api

import (
	"context"
	"fmt"
	"net/http"

	"unimart/internal/identity"
)

// AdminAPI covers administrator management, reachable only by super admins;
// route guarding keeps everyone else away and the backend enforces it again.
type AdminAPI struct {
	c *Client
}

type Admin struct {
	ID    identity.ID `json:"administratorId"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

type NewAdmin struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminUpdate struct {
	ID    identity.ID `json:"administratorId" validate:"required"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty" validate:"omitempty,email"`
}

// List fetches all administrators.
func (a *AdminAPI) List(ctx context.Context) ([]Admin, error) {
	var admins []Admin
	if err := a.c.doJSON(ctx, http.MethodGet, a.c.cfg.MarketBaseURL+"/superadmin/admin/getAll", nil, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// Get fetches one administrator.
func (a *AdminAPI) Get(ctx context.Context, id identity.ID) (*Admin, error) {
	var admin Admin
	url := fmt.Sprintf("%s/superadmin/admin/read/%s", a.c.cfg.MarketBaseURL, id)
	if err := a.c.doJSON(ctx, http.MethodGet, url, nil, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// Create provisions a new administrator account.
func (a *AdminAPI) Create(ctx context.Context, admin NewAdmin) error {
	if err := a.c.validateRequest(admin); err != nil {
		return err
	}
	return a.c.doJSON(ctx, http.MethodPost, a.c.cfg.MarketBaseURL+"/superadmin/admin/create", admin, nil)
}

// Update edits an existing administrator.
func (a *AdminAPI) Update(ctx context.Context, update AdminUpdate) error {
	if err := a.c.validateRequest(update); err != nil {
		return err
	}
	return a.c.doJSON(ctx, http.MethodPut, a.c.cfg.MarketBaseURL+"/superadmin/admin/update", update, nil)
}

// Delete removes an administrator account.
func (a *AdminAPI) Delete(ctx context.Context, id identity.ID) error {
	url := fmt.Sprintf("%s/superadmin/admin/delete/%s", a.c.cfg.MarketBaseURL, id)
	return a.c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}
