package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

const itemColumns = `id, name, description, price, category, image_url, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	it := &models.Item{}
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.ImageURL, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f models.ItemFields) (*models.Item, error) {
	query :=
		`INSERT INTO items (name, description, price, category, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + itemColumns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, f.Name, f.Description, f.Price, f.Category, f.ImageURL))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

// List returns all items, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, f models.ItemFields) (*models.Item, error) {
	query :=
		`UPDATE items
		 SET name = $1, description = $2, price = $3, category = $4, image_url = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING ` + itemColumns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, f.Name, f.Description, f.Price, f.Category, f.ImageURL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

// Delete removes the item and returns the row as it was.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Item, error) {
	query := `DELETE FROM items WHERE id = $1 RETURNING ` + itemColumns

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}
