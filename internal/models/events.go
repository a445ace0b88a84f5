package models

import "time"

// Event types
const (
	EventTypePackageCreated  = "PACKAGE_CREATED"
	EventTypePackageAssigned = "PACKAGE_ASSIGNED"
	EventTypePackageDeleted  = "PACKAGE_DELETED"
	EventTypePackageArchived = "PACKAGE_ARCHIVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ManifestLineData represents one manifest line in events
type ManifestLineData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PackageCreatedEvent published when a package is created
type PackageCreatedEvent struct {
	BaseEvent
	PackageID string             `json:"package_id"`
	CreatedBy string             `json:"created_by"`
	Manifest  []ManifestLineData `json:"manifest"`
}

// PackageAssignedEvent published when a worker takes a package
type PackageAssignedEvent struct {
	BaseEvent
	PackageID  string `json:"package_id"`
	AssignedTo string `json:"assigned_to"`
}

// PackageDeletedEvent published when a manager deletes a package
type PackageDeletedEvent struct {
	BaseEvent
	PackageID string `json:"package_id"`
	DeletedBy string `json:"deleted_by"`
}

// PackageArchivedEvent published when a package is completed and archived
type PackageArchivedEvent struct {
	BaseEvent
	PackageID  string             `json:"package_id"`
	ArchivedBy string             `json:"archived_by"`
	Manifest   []ManifestLineData `json:"manifest"`
}
