package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the Firebase UID placed in the context by the auth
// middleware.
func currentUserID(c echo.Context) (string, error) {
	uid, ok := c.Get("firebaseUID").(string)
	if !ok || uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authenticated user")
	}
	return uid, nil
}

// bindAndValidate decodes the request payload and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
