// Package signup implements the administrator registration flow.
package signup

import (
	"context"

	"cafeStorefront/internal/apiclient"
	"cafeStorefront/models"
)

const (
	// LoginPath is where a successful signup sends the visitor.
	LoginPath = "/admin-login"
	// FallbackError is shown when the backend gives no usable message.
	FallbackError = "Admin signup failed."
)

// Form is the state of the signup view between render and submit.
type Form struct {
	Email     string `form:"email" binding:"required"`
	Password  string `form:"password" binding:"required"`
	Address   string `form:"address" binding:"required"`
	AdminCode string `form:"adminCode" binding:"required"`

	Error  string            `form:"-"`
	Fields map[string]string `form:"-"`
}

// Registrar creates admin accounts on the backend.
type Registrar interface {
	JoinAdmin(ctx context.Context, req models.AdminJoinRequest) error
}

// Result is the outcome of one submit. Exactly one of Redirect and Form.Error is set.
type Result struct {
	Redirect string
	Form     Form
}

// Submitter sends signup forms to the backend.
type Submitter struct {
	registrar Registrar
}

// NewSubmitter returns a Submitter backed by registrar.
func NewSubmitter(registrar Registrar) *Submitter {
	return &Submitter{registrar: registrar}
}

// Submit issues a single create-admin-account request. On failure the form is
// returned without its password and with the server's error text.
func (s *Submitter) Submit(ctx context.Context, f Form) Result {
	err := s.registrar.JoinAdmin(ctx, models.AdminJoinRequest{
		Email:     f.Email,
		Password:  f.Password,
		Address:   f.Address,
		AdminCode: f.AdminCode,
	})
	if err == nil {
		return Result{Redirect: LoginPath}
	}
	f.Password = ""
	f.Error = apiclient.TextOr(err, FallbackError)
	return Result{Form: f}
}
