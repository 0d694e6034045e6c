package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
)

// largest value a NUMERIC(10,2) column holds
const maxPrice = 99999999.99

var errItemNotFound = common.NewError(common.ErrNotFound, "Item not found")

type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	dbTimeout   time.Duration
	logger      logging.Logger
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ItemService {
	return &ItemService{
		db:          db,
		repomanager: m,
		dbTimeout:   cfg.DBTimeout,
		logger:      logger.With("component", "items"),
	}
}

// ItemInput is a create or full-replace request. Price is a pointer so a
// missing price can be told apart from zero.
type ItemInput struct {
	Name        string
	Description string
	Price       *float64
	Category    string
	ImageURL    string
}

func (in ItemInput) fields() (models.ItemFields, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.ItemFields{}, common.NewError(common.ErrValidation, "Item name is required")
	}
	if in.Price == nil {
		return models.ItemFields{}, common.NewError(common.ErrValidation, "Price is required")
	}
	p := *in.Price
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return models.ItemFields{}, common.NewError(common.ErrValidation, "Price must be a non-negative number")
	}
	if p > maxPrice {
		return models.ItemFields{}, common.NewError(common.ErrValidation, "Price is too large")
	}
	return models.ItemFields{
		Name:        name,
		Description: in.Description,
		Price:       p,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	}, nil
}

func (s *ItemService) List(ctx context.Context) ([]*models.Item, error) {
	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	items, err := s.repomanager.Items(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *ItemService) Create(ctx context.Context, in ItemInput) (*models.Item, error) {
	f, err := in.fields()
	if err != nil {
		return nil, err
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	it, err := s.repomanager.Items(s.db).Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Info(ctx, "item created", "item_id", it.ID)
	return it, nil
}

// Update replaces every caller-controlled field of the item.
func (s *ItemService) Update(ctx context.Context, id string, in ItemInput) (*models.Item, error) {
	if !isUUID(id) {
		return nil, errItemNotFound
	}
	f, err := in.fields()
	if err != nil {
		return nil, err
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	it, err := s.repomanager.Items(s.db).Update(ctx, id, f)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	s.logger.Info(ctx, "item updated", "item_id", it.ID)
	return it, nil
}

func (s *ItemService) Delete(ctx context.Context, id string) (*models.Item, error) {
	if !isUUID(id) {
		return nil, errItemNotFound
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	it, err := s.repomanager.Items(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errItemNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	s.logger.Info(ctx, "item deleted", "item_id", it.ID)
	return it, nil
}
