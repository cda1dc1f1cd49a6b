package controllers

import (
	"net/http"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/api/validators"
	"github.com/rmartinelli/shopcart-backend/internal/auth"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin verifies credentials and returns the matching user. No session
// or token is issued.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}
