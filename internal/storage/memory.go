package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"masterpieces-api/internal/models"
)

// MemoryRepository keeps all entities in process memory. It backs local
// development and the handler test suites; production deployments use the
// Postgres repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]models.Product
	media    map[int64]models.MediaItem
	videos   map[int64]models.Video
	masters  map[int64]models.Master
	reviews  map[int64]models.Review
	orders   map[int64]models.Order
	now      func() time.Time
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		products: make(map[int64]models.Product),
		media:    make(map[int64]models.MediaItem),
		videos:   make(map[int64]models.Video),
		masters:  make(map[int64]models.Master),
		reviews:  make(map[int64]models.Review),
		orders:   make(map[int64]models.Order),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source, for tests.
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now != nil {
		r.now = now
	}
}

func (r *MemoryRepository) allocateID() int64 {
	id := r.nextID
	r.nextID++
	return id
}

// Ping always succeeds for the in-memory repository.
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].DisplayOrder != products[j].DisplayOrder {
			return products[i].DisplayOrder < products[j].DisplayOrder
		}
		// Equal display order lists newest first.
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *MemoryRepository) CreateProduct(ctx context.Context, params CreateProductParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.products[id] = models.Product{
		ID:           id,
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price,
		PhotoURL:     params.PhotoURL,
		InStock:      params.InStock,
		DisplayOrder: params.DisplayOrder,
		CreatedAt:    r.now(),
	}
	return id, nil
}

func (r *MemoryRepository) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if update.Name == nil && update.Description == nil && update.Price == nil &&
		update.PhotoURL == nil && update.InStock == nil && update.DisplayOrder == nil {
		return ErrNoFields
	}
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Price != nil {
		p.Price = update.Price
	}
	if update.PhotoURL != nil {
		p.PhotoURL = update.PhotoURL
	}
	if update.InStock != nil {
		p.InStock = *update.InStock
	}
	if update.DisplayOrder != nil {
		p.DisplayOrder = *update.DisplayOrder
	}
	r.products[id] = p
	return nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *MemoryRepository) BulkRenameProducts(ctx context.Context, newName, pattern string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var renamed int64
	for id, p := range r.products {
		if matchesILike(p.Name, pattern) {
			p.Name = newName
			r.products[id] = p
			renamed++
		}
	}
	return renamed, nil
}

// matchesILike approximates SQL ILIKE for the patterns the bulk rename
// endpoint uses: optional leading/trailing %, case-insensitive.
func matchesILike(value, pattern string) bool {
	v := strings.ToLower(value)
	p := strings.ToLower(pattern)
	leading := strings.HasPrefix(p, "%")
	trailing := strings.HasSuffix(p, "%")
	core := strings.Trim(p, "%")
	switch {
	case leading && trailing:
		return strings.Contains(v, core)
	case leading:
		return strings.HasSuffix(v, core)
	case trailing:
		return strings.HasPrefix(v, core)
	default:
		return v == p
	}
}

func (r *MemoryRepository) ListMedia(ctx context.Context) ([]models.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]models.MediaItem, 0, len(r.media))
	for _, m := range r.media {
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (r *MemoryRepository) CreateMedia(ctx context.Context, params CreateMediaParams) (models.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	item := models.MediaItem{
		ID:          id,
		URL:         params.URL,
		Title:       params.Title,
		Description: params.Description,
		MediaType:   params.MediaType,
		Category:    params.Category,
		Location:    params.Location,
		Year:        params.Year,
		CreatedAt:   r.now(),
	}
	r.media[id] = item
	return item, nil
}

func (r *MemoryRepository) UpdateMedia(ctx context.Context, id int64, update MediaUpdate) (models.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if update.URL == nil && update.Title == nil && update.Description == nil &&
		update.MediaType == nil && update.Category == nil && update.Location == nil && update.Year == nil {
		return models.MediaItem{}, ErrNoFields
	}
	m, ok := r.media[id]
	if !ok {
		return models.MediaItem{}, ErrNotFound
	}
	if update.URL != nil {
		m.URL = *update.URL
	}
	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.MediaType != nil {
		m.MediaType = *update.MediaType
	}
	if update.Category != nil {
		m.Category = *update.Category
	}
	if update.Location != nil {
		m.Location = *update.Location
	}
	if update.Year != nil {
		m.Year = update.Year
	}
	r.media[id] = m
	return m, nil
}

func (r *MemoryRepository) DeleteMedia(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.media[id]; !ok {
		return ErrNotFound
	}
	delete(r.media, id)
	return nil
}

func (r *MemoryRepository) DeleteMediaByURL(ctx context.Context, url string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, m := range r.media {
		if m.URL == url {
			delete(r.media, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) ListVideos(ctx context.Context) ([]models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	videos := make([]models.Video, 0, len(r.videos))
	for _, v := range r.videos {
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool {
		if !videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		}
		return videos[i].ID > videos[j].ID
	})
	return videos, nil
}

func (r *MemoryRepository) CreateVideo(ctx context.Context, params CreateVideoParams) (models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	video := models.Video{
		ID:          id,
		URL:         params.URL,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   r.now(),
	}
	r.videos[id] = video
	return video, nil
}

func (r *MemoryRepository) DeleteVideo(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *MemoryRepository) ListMasters(ctx context.Context) ([]models.Master, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	masters := make([]models.Master, 0, len(r.masters))
	for _, m := range r.masters {
		masters = append(masters, m)
	}
	sort.Slice(masters, func(i, j int) bool {
		if masters[i].DisplayOrder != masters[j].DisplayOrder {
			return masters[i].DisplayOrder < masters[j].DisplayOrder
		}
		return masters[i].ID < masters[j].ID
	})
	return masters, nil
}

// AddMaster seeds a craftsperson profile. The public API only updates and
// deletes masters; seeding happens via migrations in production and via this
// helper in tests.
func (r *MemoryRepository) AddMaster(m models.Master) models.Master {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.allocateID()
	} else if m.ID >= r.nextID {
		r.nextID = m.ID + 1
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	r.masters[m.ID] = m
	return m
}

func (r *MemoryRepository) UpdateMaster(ctx context.Context, id int64, update MasterUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if update.Name == nil && update.Role == nil && update.Description == nil &&
		update.PhotoURL == nil && update.DisplayOrder == nil {
		return ErrNoFields
	}
	m, ok := r.masters[id]
	if !ok {
		return nil
	}
	if update.Name != nil {
		m.Name = *update.Name
	}
	if update.Role != nil {
		m.Role = *update.Role
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.PhotoURL != nil {
		m.PhotoURL = update.PhotoURL
	}
	if update.DisplayOrder != nil {
		m.DisplayOrder = *update.DisplayOrder
	}
	m.UpdatedAt = r.now()
	r.masters[id] = m
	return nil
}

func (r *MemoryRepository) DeleteMaster(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.masters, id)
	return nil
}

func (r *MemoryRepository) ListReviews(ctx context.Context, includeUnpublished bool) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reviews := make([]models.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		if !includeUnpublished && !rv.Published {
			continue
		}
		reviews = append(reviews, rv)
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID > reviews[j].ID
	})
	return reviews, nil
}

func (r *MemoryRepository) CreateReview(ctx context.Context, params CreateReviewParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	r.reviews[id] = models.Review{
		ID:            id,
		Name:          params.Name,
		City:          params.City,
		ProductNumber: params.ProductNumber,
		ProductName:   params.ProductName,
		Rating:        params.Rating,
		Text:          params.Text,
		Published:     false,
		CreatedAt:     r.now(),
	}
	return id, nil
}

func (r *MemoryRepository) SetReviewPublished(ctx context.Context, id int64, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil
	}
	rv.Published = published
	r.reviews[id] = rv
	return nil
}

func (r *MemoryRepository) DeleteReview(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *MemoryRepository) CreateOrder(ctx context.Context, params CreateOrderParams) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.allocateID()
	order := models.Order{
		ID:            id,
		ProductIndex:  params.ProductIndex,
		ProductName:   params.ProductName,
		CustomerName:  params.CustomerName,
		ContactMethod: params.ContactMethod,
		ContactValue:  params.ContactValue,
		Comment:       params.Comment,
		CreatedAt:     r.now(),
	}
	r.orders[id] = order
	return order, nil
}

// Orders returns a copy of the stored orders, for tests.
func (r *MemoryRepository) Orders() []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders
}
