// Package models defines the entities shared between the storage layer and
// the HTTP API: gallery products, media items, videos, masters, customer
// reviews, and incoming orders.
package models

import "time"

// Product is a pottery item shown in the shop gallery.
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        *float64
	PhotoURL     *string
	InStock      bool
	DisplayOrder int
	CreatedAt    time.Time
}

// MediaItem is a photo or clip displayed in the workshop gallery.
type MediaItem struct {
	ID          int64
	URL         string
	Title       string
	Description string
	MediaType   string
	Category    string
	Location    string
	Year        *int
	CreatedAt   time.Time
}

// Video is an embedded video shown on the landing page.
type Video struct {
	ID          int64
	URL         string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Master is a craftsperson profile.
type Master struct {
	ID           int64
	Name         string
	Role         string
	Description  string
	PhotoURL     *string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Review is a customer review; unpublished reviews are only visible to the
// admin panel.
type Review struct {
	ID            int64
	Name          string
	City          string
	ProductNumber string
	ProductName   string
	Rating        int
	Text          string
	Published     bool
	CreatedAt     time.Time
}

// Order is a purchase request submitted from the storefront.
type Order struct {
	ID            int64
	ProductIndex  int
	ProductName   string
	CustomerName  string
	ContactMethod string
	ContactValue  string
	Comment       string
	CreatedAt     time.Time
}
