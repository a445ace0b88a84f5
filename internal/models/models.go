package models

import "time"

// User represents a warehouse worker or manager account
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	FirstLogin   bool      `db:"first_login" json:"first_login"`
	IsManager    bool      `db:"is_manager" json:"is_manager"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product represents a product in the catalog. QRCode carries the scannable
// token, which is always equal to the product's own ID.
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Producer    string    `db:"producer" json:"producer"`
	Description string    `db:"description" json:"description"`
	Quantity    int       `db:"quantity" json:"quantity"`
	QRCode      string    `db:"qr_code" json:"qr_code"`
	AddedBy     string    `db:"added_by" json:"added_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Package represents a work order grouping product quantities for a picker.
// AssignedTo is the empty string while the package is unassigned. Version
// guards assignment updates against concurrent writers.
type Package struct {
	ID         string    `db:"id" json:"id"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	AssignedTo string    `db:"assigned_to" json:"assigned_to"`
	Done       bool      `db:"done" json:"done"`
	Version    int64     `db:"version" json:"version"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PackageItem is one manifest line: a product and its ordered quantity.
type PackageItem struct {
	PackageID string `db:"package_id" json:"package_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

// ArchivedPackage is the terminal copy of a completed package.
type ArchivedPackage struct {
	ID         string    `db:"id" json:"id"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	AssignedTo string    `db:"assigned_to" json:"assigned_to"`
	Done       bool      `db:"done" json:"done"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ArchivedBy string    `db:"archived_by" json:"archived_by"`
	ArchivedAt time.Time `db:"archived_at" json:"archived_at"`
}

// UnassignedSentinel is the documented "no assignee yet" value. The store
// persists the empty string rather than NULL so equality queries stay simple.
const UnassignedSentinel = ""

// Package list filters
const (
	FilterUnassigned = "unassigned"
	FilterAssigned   = "assigned"
)

// Product search filters
const (
	ProductFilterName     = "name"
	ProductFilterProducer = "producer"
	ProductFilterID       = "id"
)

// ProcessedEvent for idempotent event consumption
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
