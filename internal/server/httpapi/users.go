package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	_, err := s.deps.Users.Register(c.Request().Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin || req.IsAdminSnake,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User registered successfully",
	})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := s.deps.Users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   res.Token,
		"isAdmin": res.IsAdmin,
		"name":    res.Name,
		"email":   res.Email,
	})
}

func (s *Server) profile(c echo.Context) error {
	claims, _ := claimsFrom(c)

	u, err := s.deps.Users.Profile(c.Request().Context(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (s *Server) updateProfile(c echo.Context) error {
	claims, _ := claimsFrom(c)

	var req profileUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	_, err := s.deps.Users.UpdateProfile(c.Request().Context(), claims.UserID, services.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Profile updated successfully",
	})
}
