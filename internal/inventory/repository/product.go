package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
)

// Product is a catalog entry describing a kind of equipment. Individual
// physical units are EquipmentItems referencing a product. Products are
// never deleted, only deactivated, so historical ledger rows keep resolving.
type Product struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Manufacturer *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	Model        *string   `db:"model" json:"model,omitempty"`
	Category     string    `db:"category" json:"category"`
	UPC          *string   `db:"upc" json:"upc,omitempty"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	IsConsumable bool      `db:"is_consumable" json:"is_consumable"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ProductRepository handles product catalog persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (
			id, name, description, manufacturer, model, category, upc,
			image_url, is_consumable, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Description, p.Manufacturer, p.Model, p.Category,
		p.UPC, p.ImageURL, p.IsConsumable, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var p Product

	query := `
		SELECT id, name, description, manufacturer, model, category, upc,
		       image_url, is_consumable, is_active, created_at, updated_at
		FROM products WHERE id = $1
	`
	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetByUPC gets a product by its UPC barcode
func (r *ProductRepository) GetByUPC(ctx context.Context, upc string) (*Product, error) {
	var p Product

	query := `
		SELECT id, name, description, manufacturer, model, category, upc,
		       image_url, is_consumable, is_active, created_at, updated_at
		FROM products WHERE upc = $1
	`
	err := r.db.GetContext(ctx, &p, query, upc)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// List lists products with pagination and an optional category filter
func (r *ProductRepository) List(ctx context.Context, page, perPage int, category string) ([]*Product, int64, error) {
	var total int64
	var products []*Product

	countQuery := `SELECT COUNT(*) FROM products WHERE is_active = true`
	args := []interface{}{}

	if category != "" {
		countQuery += ` AND category = $1`
		args = append(args, category)
	}

	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, name, description, manufacturer, model, category, upc,
		       image_url, is_consumable, is_active, created_at, updated_at
		FROM products WHERE is_active = true
	`

	if category != "" {
		query += ` AND category = $1 ORDER BY name LIMIT $2 OFFSET $3`
		args = append(args, perPage, offset)
	} else {
		query += ` ORDER BY name LIMIT $1 OFFSET $2`
		args = append(args, perPage, offset)
	}

	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, manufacturer = $4, model = $5,
			category = $6, upc = $7, image_url = $8, is_consumable = $9,
			is_active = $10, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Manufacturer, p.Model, p.Category,
		p.UPC, p.ImageURL, p.IsConsumable, p.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// Deactivate marks a product inactive without deleting it
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}
