package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (r itemRequest) input() services.ItemInput {
	return services.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

func (s *Server) listItems(c echo.Context) error {
	items, err := s.deps.Items.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (s *Server) createItem(c echo.Context) error {
	var req itemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	item, err := s.deps.Items.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "item": item})
}

func (s *Server) updateItem(c echo.Context) error {
	var req itemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	item, err := s.deps.Items.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "item": item})
}

func (s *Server) deleteItem(c echo.Context) error {
	if _, err := s.deps.Items.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Item deleted successfully",
	})
}
