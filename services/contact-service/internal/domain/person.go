package domain

import (
	"time"

	"github.com/google/uuid"
)

// InfoType is the kind of a contact entry.
type InfoType string

const (
	InfoTypePhone    InfoType = "phone"
	InfoTypeEmail    InfoType = "email"
	InfoTypeLocation InfoType = "location"
)

// IsValid reports whether the info type is one of the known values.
func (t InfoType) IsValid() bool {
	switch t {
	case InfoTypePhone, InfoTypeEmail, InfoTypeLocation:
		return true
	}
	return false
}

// ContactInfo is one typed contact entry belonging to a person.
type ContactInfo struct {
	ID      uuid.UUID `json:"id"`
	Type    InfoType  `json:"type"`
	Content string    `json:"content"`
}

// Person is one entry in the contact directory, with its embedded contact
// entries.
type Person struct {
	ID           uuid.UUID     `json:"id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Company      string        `json:"company"`
	ContactInfos []ContactInfo `json:"contact_infos"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewPerson creates a person with no contact entries.
func NewPerson(firstName, lastName, company string) *Person {
	return &Person{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Company:   company,
		CreatedAt: time.Now().UTC(),
	}
}

// NewContactInfo creates a contact entry.
func NewContactInfo(infoType InfoType, content string) ContactInfo {
	return ContactInfo{
		ID:      uuid.New(),
		Type:    infoType,
		Content: content,
	}
}
