package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/labstack/echo/v4"
)

var errNoFile = common.NewError(common.ErrNoFile, "No file uploaded")

func (s *Server) uploadProfileImage(c echo.Context) error {
	claims, _ := claimsFrom(c)

	return s.withUpload(c, services.ProfileImageField, func(up *services.Upload) (string, error) {
		return s.deps.Images.SaveProfileImage(c.Request().Context(), claims.UserID, up)
	})
}

func (s *Server) uploadItemImage(c echo.Context) error {
	return s.withUpload(c, services.ItemImageField, func(up *services.Upload) (string, error) {
		return s.deps.Images.SaveItemImage(c.Request().Context(), up)
	})
}

// withUpload opens the multipart file under field and hands it to save.
func (s *Server) withUpload(c echo.Context, field string, save func(*services.Upload) (string, error)) error {
	fh, err := c.FormFile(field)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		if errors.Is(err, http.ErrMissingFile) {
			return errNoFile
		}
		return errBadBody.WithInternal(err)
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := save(&services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "imageUrl": url})
}
