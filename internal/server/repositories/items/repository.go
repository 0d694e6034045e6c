package items

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f models.ItemFields) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	Update(ctx context.Context, id string, f models.ItemFields) (*models.Item, error)
	Delete(ctx context.Context, id string) (*models.Item, error)
}
