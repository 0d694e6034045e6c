// Package httpapi is the JSON-over-HTTP transport of the store: routing,
// access middleware, request decoding and error rendering, on top of echo.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
}

type ItemService interface {
	List(ctx context.Context) ([]*models.Item, error)
	Create(ctx context.Context, in services.ItemInput) (*models.Item, error)
	Update(ctx context.Context, id string, in services.ItemInput) (*models.Item, error)
	Delete(ctx context.Context, id string) (*models.Item, error)
}

type ImageService interface {
	SaveProfileImage(ctx context.Context, userID string, up *services.Upload) (string, error)
	SaveItemImage(ctx context.Context, up *services.Upload) (string, error)
	MaxBytes() int64
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, bool)
}

// Deps are the collaborators the routes call into.
type Deps struct {
	Users  UserService
	Items  ItemService
	Images ImageService
	Tokens TokenVerifier

	// Ready backs GET /ready; nil means always ready.
	Ready func(ctx context.Context) error
	// StaticDir, when set, is served under /uploads.
	StaticDir string
}

type Server struct {
	echo            *echo.Echo
	address         string
	shutdownTimeout time.Duration
	logger          logging.Logger
	deps            Deps
}

func NewServer(cfg *config.Config, l logging.Logger, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:            e,
		address:         cfg.HTTPAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          l.With("module", "http_server"),
		deps:            deps,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())

	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/health", s.health)
	e.GET("/ready", s.ready)
	if s.deps.StaticDir != "" {
		e.Static("/uploads", s.deps.StaticDir)
	}

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	users := api.Group("/users", s.authenticate)
	users.GET("/profile", s.profile)
	users.PUT("/profile/update", s.updateProfile)

	items := api.Group("/items")
	items.GET("", s.listItems)
	items.POST("/add", s.createItem, s.authenticate, requireAdmin)
	items.PUT("/update/:id", s.updateItem, s.authenticate, requireAdmin)
	items.DELETE("/delete/:id", s.deleteItem, s.authenticate, requireAdmin)

	// room for multipart framing on top of the file itself
	limit := s.deps.Images.MaxBytes() + 1<<20
	upload := api.Group("/upload", s.authenticate, middleware.BodyLimit(fmt.Sprintf("%dB", limit)))
	upload.POST("/profile-image", s.uploadProfileImage)
	upload.POST("/item-image", s.uploadItemImage)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		err := s.echo.Start(s.address)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) ready(c echo.Context) error {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(c.Request().Context()); err != nil {
			s.logger.Warn(c.Request().Context(), "readiness check failed", "error", err.Error())
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
