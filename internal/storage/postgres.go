package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"masterpieces-api/internal/models"
)

// PostgresRepository implements Repository on top of a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository opens a Postgres-backed repository. The caller must
// ensure database migrations have been applied prior to invoking this
// constructor.
func NewPostgresRepository(dsn string, opts ...Option) (*PostgresRepository, error) {
	cfg := newPostgresConfig(dsn, opts...)
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections >= 0 {
		poolCfg.MinConns = cfg.MinConnections
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckInterval > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckInterval
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.ApplicationName != "" {
		if poolCfg.ConnConfig.RuntimeParams == nil {
			poolCfg.ConnConfig.RuntimeParams = make(map[string]string)
		}
		poolCfg.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

// Close releases the connection pool resources.
func (r *PostgresRepository) Close(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.pool.Close()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Ping verifies database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, description, price, photo_url, in_stock, display_order, created_at
FROM products
ORDER BY display_order, created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.PhotoURL, &p.InStock, &p.DisplayOrder, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, params CreateProductParams) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO products (name, description, price, photo_url, in_stock, display_order)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`, params.Name, params.Description, params.Price, params.PhotoURL, params.InStock, params.DisplayOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) error {
	set := newSetClause()
	set.add("name", update.Name)
	set.add("description", update.Description)
	set.add("price", update.Price)
	set.add("photo_url", update.PhotoURL)
	set.add("in_stock", update.InStock)
	set.add("display_order", update.DisplayOrder)
	if set.empty() {
		return ErrNoFields
	}
	_, err := r.pool.Exec(ctx, set.query("products", id), set.args...)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) BulkRenameProducts(ctx context.Context, newName, pattern string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name = $1 WHERE name ILIKE $2`, newName, pattern)
	if err != nil {
		return 0, fmt.Errorf("bulk rename products: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) ListMedia(ctx context.Context) ([]models.MediaItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, url, title, description, media_type, category, location, year, created_at
FROM media_items
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()
	items := []models.MediaItem{}
	for rows.Next() {
		var m models.MediaItem
		if err := rows.Scan(&m.ID, &m.URL, &m.Title, &m.Description, &m.MediaType, &m.Category, &m.Location, &m.Year, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) CreateMedia(ctx context.Context, params CreateMediaParams) (models.MediaItem, error) {
	var m models.MediaItem
	err := r.pool.QueryRow(ctx, `
INSERT INTO media_items (url, title, description, media_type, category, location, year)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, url, title, description, media_type, category, location, year, created_at
`, params.URL, params.Title, params.Description, params.MediaType, params.Category, params.Location, params.Year).
		Scan(&m.ID, &m.URL, &m.Title, &m.Description, &m.MediaType, &m.Category, &m.Location, &m.Year, &m.CreatedAt)
	if err != nil {
		return models.MediaItem{}, fmt.Errorf("create media item: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) UpdateMedia(ctx context.Context, id int64, update MediaUpdate) (models.MediaItem, error) {
	set := newSetClause()
	set.add("url", update.URL)
	set.add("title", update.Title)
	set.add("description", update.Description)
	set.add("media_type", update.MediaType)
	set.add("category", update.Category)
	set.add("location", update.Location)
	set.add("year", update.Year)
	if set.empty() {
		return models.MediaItem{}, ErrNoFields
	}
	query := set.query("media_items", id) + `
RETURNING id, url, title, description, media_type, category, location, year, created_at`
	var m models.MediaItem
	err := r.pool.QueryRow(ctx, query, set.args...).
		Scan(&m.ID, &m.URL, &m.Title, &m.Description, &m.MediaType, &m.Category, &m.Location, &m.Year, &m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return models.MediaItem{}, ErrNotFound
		}
		return models.MediaItem{}, fmt.Errorf("update media item %d: %w", id, err)
	}
	return m, nil
}

func (r *PostgresRepository) DeleteMedia(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteMediaByURL(ctx context.Context, url string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM media_items WHERE url = $1`, url)
	if err != nil {
		return 0, fmt.Errorf("delete media by url: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) ListVideos(ctx context.Context) ([]models.Video, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, url, title, description, created_at
FROM videos
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()
	videos := []models.Video{}
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.URL, &v.Title, &v.Description, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *PostgresRepository) CreateVideo(ctx context.Context, params CreateVideoParams) (models.Video, error) {
	var v models.Video
	err := r.pool.QueryRow(ctx, `
INSERT INTO videos (url, title, description)
VALUES ($1, $2, $3)
RETURNING id, url, title, description, created_at
`, params.URL, params.Title, params.Description).
		Scan(&v.ID, &v.URL, &v.Title, &v.Description, &v.CreatedAt)
	if err != nil {
		return models.Video{}, fmt.Errorf("create video: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) DeleteVideo(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListMasters(ctx context.Context) ([]models.Master, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, role, description, photo_url, display_order, created_at, updated_at
FROM masters
ORDER BY display_order, id
`)
	if err != nil {
		return nil, fmt.Errorf("list masters: %w", err)
	}
	defer rows.Close()
	masters := []models.Master{}
	for rows.Next() {
		var m models.Master
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Description, &m.PhotoURL, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan master: %w", err)
		}
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

func (r *PostgresRepository) UpdateMaster(ctx context.Context, id int64, update MasterUpdate) error {
	set := newSetClause()
	set.add("name", update.Name)
	set.add("role", update.Role)
	set.add("description", update.Description)
	set.add("photo_url", update.PhotoURL)
	set.add("display_order", update.DisplayOrder)
	if set.empty() {
		return ErrNoFields
	}
	set.addRaw("updated_at = NOW()")
	_, err := r.pool.Exec(ctx, set.query("masters", id), set.args...)
	if err != nil {
		return fmt.Errorf("update master %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteMaster(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM masters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete master %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) ListReviews(ctx context.Context, includeUnpublished bool) ([]models.Review, error) {
	query := `
SELECT id, name, city, product_number, product_name, rating, text, published, created_at
FROM reviews
`
	if !includeUnpublished {
		query += "WHERE published = TRUE\n"
	}
	query += "ORDER BY created_at DESC"
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()
	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.Name, &rv.City, &rv.ProductNumber, &rv.ProductName, &rv.Rating, &rv.Text, &rv.Published, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *PostgresRepository) CreateReview(ctx context.Context, params CreateReviewParams) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO reviews (name, city, product_number, product_name, rating, text, published)
VALUES ($1, $2, $3, $4, $5, $6, FALSE)
RETURNING id
`, params.Name, params.City, params.ProductNumber, params.ProductName, params.Rating, params.Text).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create review: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) SetReviewPublished(ctx context.Context, id int64, published bool) error {
	if _, err := r.pool.Exec(ctx, `UPDATE reviews SET published = $1 WHERE id = $2`, published, id); err != nil {
		return fmt.Errorf("set review %d published: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteReview(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, params CreateOrderParams) (models.Order, error) {
	var o models.Order
	err := r.pool.QueryRow(ctx, `
INSERT INTO orders (product_index, product_name, customer_name, contact_method, contact_value, comment)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, product_index, product_name, customer_name, contact_method, contact_value, comment, created_at
`, params.ProductIndex, params.ProductName, params.CustomerName, params.ContactMethod, params.ContactValue, params.Comment).
		Scan(&o.ID, &o.ProductIndex, &o.ProductName, &o.CustomerName, &o.ContactMethod, &o.ContactValue, &o.Comment, &o.CreatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows)
}
