package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/learnhub-backend/internal/model"
)

// ProductRepository handles catalog data access.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, title, description, price::float8, currency, category, tags, instructor,
	syllabus, duration, difficulty, language, is_published, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Currency, &p.Category, &p.Tags, &p.Instructor,
		&p.Syllabus, &p.Duration, &p.Difficulty, &p.Language, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// Syllabus order is defined by the lesson Order field, not by JSON position.
	sort.SliceStable(p.Syllabus, func(i, j int) bool { return p.Syllabus[i].Order < p.Syllabus[j].Order })
	return p, nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPublished retrieves every published product ordered by title.
func (r *ProductRepository) ListPublished(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_published ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Syllabus == nil {
		p.Syllabus = []model.Lesson{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO products (title, description, price, currency, category, tags, instructor,
		                       syllabus, duration, difficulty, language, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Description, p.Price, p.Currency, p.Category, p.Tags, p.Instructor,
		p.Syllabus, p.Duration, p.Difficulty, p.Language, p.IsPublished,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}
