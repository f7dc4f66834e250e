package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/domain"
	"github.com/emrecodespace/setur-assessment/services/contact-service/internal/repository/interfaces"
	platformError "github.com/emrecodespace/setur-assessment/shared/platform/errors"
	"github.com/emrecodespace/setur-assessment/shared/platform/observability/logging"
)

const personsCollection = "persons"

// MongoDB document models, kept separate from the domain models.

type personDoc struct {
	PersonID     string           `bson:"person_id"`
	FirstName    string           `bson:"first_name"`
	LastName     string           `bson:"last_name"`
	Company      string           `bson:"company"`
	ContactInfos []contactInfoDoc `bson:"contact_infos"`
	CreatedAt    time.Time        `bson:"created_at"`
}

type contactInfoDoc struct {
	InfoID  string `bson:"info_id"`
	Type    string `bson:"type"`
	Content string `bson:"content"`
}

// ContactRepository implements the ContactRepository interface using MongoDB
type ContactRepository struct {
	collection *mongo.Collection
	logger     logging.Logger
}

// NewContactRepository creates a new MongoDB contact repository and ensures
// its indexes.
func NewContactRepository(database *mongo.Database, logger logging.Logger) (interfaces.ContactRepository, error) {
	collection := database.Collection(personsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "person_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		// Indexes can be created later; do not fail startup over them.
		logger.Warn(ctx, "Failed to create person index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &ContactRepository{collection: collection, logger: logger}, nil
}

// Create persists a new person document
func (r *ContactRepository) Create(ctx context.Context, person *domain.Person) error {
	_, err := r.collection.InsertOne(ctx, domainToDocument(person))
	if err != nil {
		return platformError.Wrap(err, "failed to insert person")
	}

	return nil
}

// GetAll retrieves every person with their contact entries
func (r *ContactRepository) GetAll(ctx context.Context) ([]*domain.Person, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, platformError.Wrap(err, "failed to find persons")
	}
	defer cursor.Close(ctx)

	var docs []personDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, platformError.Wrap(err, "failed to decode persons")
	}

	persons := make([]*domain.Person, 0, len(docs))
	for i := range docs {
		person, err := documentToDomain(&docs[i])
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}

	return persons, nil
}

// GetByID retrieves one person by id
func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	var doc personDoc
	err := r.collection.FindOne(ctx, bson.M{"person_id": id.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, platformError.NewNotFound("person not found")
		}
		return nil, platformError.Wrap(err, "failed to get person")
	}

	return documentToDomain(&doc)
}

// Delete removes a person document. The embedded contact entries go with it.
func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"person_id": id.String()})
	if err != nil {
		return platformError.Wrap(err, "failed to delete person")
	}
	if result.DeletedCount == 0 {
		return platformError.NewNotFound("person not found")
	}

	return nil
}

// AddContactInfo appends a contact entry to a person document
func (r *ContactRepository) AddContactInfo(ctx context.Context, personID uuid.UUID, info domain.ContactInfo) error {
	update := bson.M{
		"$push": bson.M{
			"contact_infos": contactInfoDoc{
				InfoID:  info.ID.String(),
				Type:    string(info.Type),
				Content: info.Content,
			},
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"person_id": personID.String()}, update)
	if err != nil {
		return platformError.Wrap(err, "failed to add contact info")
	}
	if result.MatchedCount == 0 {
		return platformError.NewNotFound("person not found")
	}

	return nil
}

// RemoveContactInfo removes one contact entry from a person document
func (r *ContactRepository) RemoveContactInfo(ctx context.Context, personID, infoID uuid.UUID) error {
	update := bson.M{
		"$pull": bson.M{
			"contact_infos": bson.M{"info_id": infoID.String()},
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"person_id": personID.String()}, update)
	if err != nil {
		return platformError.Wrap(err, "failed to remove contact info")
	}
	if result.MatchedCount == 0 {
		return platformError.NewNotFound("person not found")
	}
	if result.ModifiedCount == 0 {
		return platformError.NewNotFound("contact info not found")
	}

	return nil
}

// HealthCheck verifies the collection is reachable
func (r *ContactRepository) HealthCheck(ctx context.Context) error {
	if err := r.collection.Database().Client().Ping(ctx, nil); err != nil {
		return platformError.Wrap(err, "contact repository ping failed")
	}
	return nil
}

func domainToDocument(person *domain.Person) *personDoc {
	infos := make([]contactInfoDoc, len(person.ContactInfos))
	for i, info := range person.ContactInfos {
		infos[i] = contactInfoDoc{
			InfoID:  info.ID.String(),
			Type:    string(info.Type),
			Content: info.Content,
		}
	}

	return &personDoc{
		PersonID:     person.ID.String(),
		FirstName:    person.FirstName,
		LastName:     person.LastName,
		Company:      person.Company,
		ContactInfos: infos,
		CreatedAt:    person.CreatedAt,
	}
}

func documentToDomain(doc *personDoc) (*domain.Person, error) {
	personID, err := uuid.Parse(doc.PersonID)
	if err != nil {
		return nil, platformError.Wrap(err, "invalid person id in document")
	}

	infos := make([]domain.ContactInfo, len(doc.ContactInfos))
	for i, info := range doc.ContactInfos {
		infoID, err := uuid.Parse(info.InfoID)
		if err != nil {
			return nil, platformError.Wrap(err, "invalid contact info id in document")
		}
		infos[i] = domain.ContactInfo{
			ID:      infoID,
			Type:    domain.InfoType(info.Type),
			Content: info.Content,
		}
	}

	return &domain.Person{
		ID:           personID,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Company:      doc.Company,
		ContactInfos: infos,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
