package model

import "time"

// ResourceType categorizes bookable units.
type ResourceType string

const (
	ResourceKennel       ResourceType = "KENNEL"
	ResourceSuite        ResourceType = "SUITE"
	ResourceGroomingBay  ResourceType = "GROOMING_BAY"
	ResourceTrainingArea ResourceType = "TRAINING_AREA"
)

// Resource is a bookable unit: kennel, suite, grooming bay or training area.
// Resources are managed by administrative CRUD elsewhere; the availability
// core only reads them.
type Resource struct {
	ID        string       `json:"id" db:"id"`
	TenantID  string       `json:"tenant_id" db:"tenant_id"`
	Name      string       `json:"name" db:"name"`
	Type      ResourceType `json:"type" db:"type"`
	MaxPets   int          `json:"max_pets" db:"max_pets"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// ServiceCategory classifies booked services. Housing categories require a
// kennel assignment before submission; appointment categories do not.
type ServiceCategory string

const (
	ServiceBoarding ServiceCategory = "BOARDING"
	ServiceDaycare  ServiceCategory = "DAYCARE"
	ServiceGrooming ServiceCategory = "GROOMING"
	ServiceTraining ServiceCategory = "TRAINING"
)

// RequiresAssignment reports whether bookings in this category must have a
// resource assigned (or explicitly auto-assigned) per pet before submission.
func (c ServiceCategory) RequiresAssignment() bool {
	return c == ServiceBoarding || c == ServiceDaycare
}

// Valid reports whether the category is one of the known service categories.
func (c ServiceCategory) Valid() bool {
	switch c {
	case ServiceBoarding, ServiceDaycare, ServiceGrooming, ServiceTraining:
		return true
	}
	return false
}
