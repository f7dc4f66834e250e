package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
)

// ContactRepository defines the persistence contract for the contact directory.
type ContactRepository interface {
	// Create persists a new person.
	Create(ctx context.Context, person *domain.Person) error

	// GetAll returns every person with their contact entries.
	GetAll(ctx context.Context) ([]*domain.Person, error)

	// GetByID returns one person with their contact entries. Returns a
	// not-found error for an unknown id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)

	// Delete removes a person and, with them, all their contact entries.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddContactInfo appends a contact entry to a person.
	AddContactInfo(ctx context.Context, personID uuid.UUID, info domain.ContactInfo) error

	// RemoveContactInfo removes one contact entry from a person.
	RemoveContactInfo(ctx context.Context, personID, infoID uuid.UUID) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error
}

// ReportCache caches the computed location report between directory writes.
type ReportCache interface {
	// Get returns the cached report, or (nil, nil) on a cache miss.
	Get(ctx context.Context) ([]domain.LocationReport, error)

	// Set stores the report with the cache's TTL.
	Set(ctx context.Context, report []domain.LocationReport) error

	// Invalidate drops the cached report.
	Invalidate(ctx context.Context) error
}
