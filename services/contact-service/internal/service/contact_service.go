package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/interfaces"
	"github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/metrics"
)

// ContactService handles the contact directory business logic. Every write
// invalidates the cached location report, since any directory change can
// alter the aggregation.
type ContactService struct {
	repo    interfaces.ContactRepository
	cache   interfaces.ReportCache
	logger  logging.Logger
	metrics metrics.Metrics
	tracer  trace.Tracer
}

// NewContactService creates a new contact service
func NewContactService(
	repo interfaces.ContactRepository,
	cache interfaces.ReportCache,
	logger logging.Logger,
	metrics metrics.Metrics,
) *ContactService {
	return &ContactService{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("contact-service"),
	}
}

// CreatePerson validates and persists a new person
func (s *ContactService) CreatePerson(ctx context.Context, firstName, lastName, company string) (*domain.Person, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.CreatePerson")
	defer span.End()

	if strings.TrimSpace(firstName) == "" {
		return nil, errors.NewValidation("firstName is required")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, errors.NewValidation("lastName is required")
	}

	person := domain.NewPerson(firstName, lastName, company)
	span.SetAttributes(attribute.String("person_id", person.ID.String()))

	if err := s.repo.Create(ctx, person); err != nil {
		span.RecordError(err)
		s.logger.Error(ctx, "Failed to create person", err)
		return nil, errors.Wrap(err, "failed to create person")
	}

	s.invalidateReportCache(ctx)
	s.metrics.IncrementCounter("person_created", nil)

	s.logger.Info(ctx, "Person created", map[string]interface{}{
		"person_id": person.ID,
	})

	return person, nil
}

// GetPersons returns every person in the directory
func (s *ContactService) GetPersons(ctx context.Context) ([]*domain.Person, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.GetPersons")
	defer span.End()

	persons, err := s.repo.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("person_count", len(persons)))
	return persons, nil
}

// GetPerson returns one person with their contact entries
func (s *ContactService) GetPerson(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.GetPerson")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", id.String()))

	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return person, nil
}

// DeletePerson removes a person and all their contact entries
func (s *ContactService) DeletePerson(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ContactService.DeletePerson")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", id.String()))

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateReportCache(ctx)
	s.metrics.IncrementCounter("person_deleted", nil)

	s.logger.Info(ctx, "Person deleted", map[string]interface{}{
		"person_id": id,
	})

	return nil
}

// AddContactInfo validates and appends a typed contact entry to a person
func (s *ContactService) AddContactInfo(ctx context.Context, personID uuid.UUID, infoType, content string) (*domain.ContactInfo, error) {
	ctx, span := s.tracer.Start(ctx, "ContactService.AddContactInfo")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", personID.String()))

	parsedType := domain.InfoType(strings.ToLower(strings.TrimSpace(infoType)))
	if !parsedType.IsValid() {
		return nil, errors.NewValidation("type must be one of phone, email, location")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidation("content is required")
	}

	info := domain.NewContactInfo(parsedType, content)

	if err := s.repo.AddContactInfo(ctx, personID, info); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.invalidateReportCache(ctx)
	s.metrics.IncrementCounter("contact_info_added", map[string]string{"type": string(parsedType)})

	s.logger.Info(ctx, "Contact info added", map[string]interface{}{
		"person_id": personID,
		"info_id":   info.ID,
		"type":      parsedType,
	})

	return &info, nil
}

// RemoveContactInfo removes one contact entry from a person
func (s *ContactService) RemoveContactInfo(ctx context.Context, personID, infoID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ContactService.RemoveContactInfo")
	defer span.End()

	span.SetAttributes(
		attribute.String("person_id", personID.String()),
		attribute.String("info_id", infoID.String()),
	)

	if err := s.repo.RemoveContactInfo(ctx, personID, infoID); err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidateReportCache(ctx)
	s.metrics.IncrementCounter("contact_info_removed", nil)

	return nil
}

// HealthCheck verifies the service's backing store
func (s *ContactService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// invalidateReportCache drops the cached report after a directory write.
// A failed invalidation is logged, not surfaced: the TTL bounds staleness.
func (s *ContactService) invalidateReportCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to invalidate report cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
