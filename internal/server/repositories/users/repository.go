package users

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	SetProfileImage(ctx context.Context, id, url string) error
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
	UpsertAdmin(ctx context.Context, name, email, passwordHash string) (*models.User, error)
}
