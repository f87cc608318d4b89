package storage

import (
	"context"
	"errors"

	"masterpieces-api/internal/models"
)

var (
	// ErrNotFound indicates that the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoFields indicates that a partial update carried no recognised fields.
	ErrNoFields = errors.New("no fields to update")
)

// Repository exposes the datastore operations required by the API handlers.
type Repository interface {
	Ping(ctx context.Context) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (int64, error)
	UpdateProduct(ctx context.Context, id int64, update ProductUpdate) error
	DeleteProduct(ctx context.Context, id int64) error
	BulkRenameProducts(ctx context.Context, newName, pattern string) (int64, error)

	ListMedia(ctx context.Context) ([]models.MediaItem, error)
	CreateMedia(ctx context.Context, params CreateMediaParams) (models.MediaItem, error)
	UpdateMedia(ctx context.Context, id int64, update MediaUpdate) (models.MediaItem, error)
	DeleteMedia(ctx context.Context, id int64) error
	DeleteMediaByURL(ctx context.Context, url string) (int64, error)

	ListVideos(ctx context.Context) ([]models.Video, error)
	CreateVideo(ctx context.Context, params CreateVideoParams) (models.Video, error)
	DeleteVideo(ctx context.Context, id int64) error

	ListMasters(ctx context.Context) ([]models.Master, error)
	UpdateMaster(ctx context.Context, id int64, update MasterUpdate) error
	DeleteMaster(ctx context.Context, id int64) error

	ListReviews(ctx context.Context, includeUnpublished bool) ([]models.Review, error)
	CreateReview(ctx context.Context, params CreateReviewParams) (int64, error)
	SetReviewPublished(ctx context.Context, id int64, published bool) error
	DeleteReview(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, params CreateOrderParams) (models.Order, error)
}

// CreateProductParams carries the fields accepted when adding a product.
type CreateProductParams struct {
	Name         string
	Description  string
	Price        *float64
	PhotoURL     *string
	InStock      bool
	DisplayOrder int
}

// ProductUpdate describes a partial product update. Nil fields are left
// untouched.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	PhotoURL     *string
	InStock      *bool
	DisplayOrder *int
}

// CreateMediaParams carries the fields accepted when adding a gallery item.
type CreateMediaParams struct {
	URL         string
	Title       string
	Description string
	MediaType   string
	Category    string
	Location    string
	Year        *int
}

// MediaUpdate describes a partial gallery item update.
type MediaUpdate struct {
	URL         *string
	Title       *string
	Description *string
	MediaType   *string
	Category    *string
	Location    *string
	Year        *int
}

// CreateVideoParams carries the fields accepted when adding a video.
type CreateVideoParams struct {
	URL         string
	Title       string
	Description string
}

// MasterUpdate describes a partial craftsperson profile update.
type MasterUpdate struct {
	Name         *string
	Role         *string
	Description  *string
	PhotoURL     *string
	DisplayOrder *int
}

// CreateReviewParams carries the fields accepted when submitting a review.
// Reviews start unpublished until approved from the admin panel.
type CreateReviewParams struct {
	Name          string
	City          string
	ProductNumber string
	ProductName   string
	Rating        int
	Text          string
}

// CreateOrderParams carries the fields accepted when submitting an order.
type CreateOrderParams struct {
	ProductIndex  int
	ProductName   string
	CustomerName  string
	ContactMethod string
	ContactValue  string
	Comment       string
}
