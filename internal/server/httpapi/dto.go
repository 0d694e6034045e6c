package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Request bodies. Unknown fields are dropped on decode, so a profile update
// has no way to carry is_admin.

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsAdmin      bool   `json:"isAdmin"`
	IsAdminSnake bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileUpdateRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

type itemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
}

var errBadBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")

// bindBody decodes the JSON body only; path and query values are never
// mixed into the request structs.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return errBadBody.WithInternal(err)
	}
	return nil
}
