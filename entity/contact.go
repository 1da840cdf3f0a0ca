package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Contact categories. The commercial enumerations keep the Spanish
// values the CRM UI was built around.
const (
	CategoryClient   = "cliente"
	CategoryProspect = "prospecto"
	CategoryVendor   = "proveedor"
	CategoryPersonal = "personal"
)

// Lead sources.
const (
	SourceReferral = "referral"
	SourceWeb      = "web"
	SourceChat     = "chat"
	SourceOther    = "other"
)

// Contact is a single real-world counterparty. Phone holds the
// canonical form only; raw transport representations are matched
// through the phone variant set, never stored.
type Contact struct {
	UUID        string    `json:"uuid" bson:"uuid"`
	Name        string    `json:"name" bson:"name" validate:"required"`
	// Email may hold the synthesized "{phone}@chat" placeholder,
	// which is not an RFC address, so only presence is validated.
	Email       string    `json:"email" bson:"email" validate:"required"`
	Phone       string    `json:"phone" bson:"phone" validate:"omitempty,e164"`
	Category    string    `json:"category" bson:"category" validate:"omitempty,oneof=cliente prospecto proveedor personal"`
	LeadSource  string    `json:"lead_source" bson:"lead_source" validate:"omitempty"`
	Score       int       `json:"score" bson:"score" validate:"omitempty"`
	Tags        []string  `json:"tags" bson:"tags" validate:"omitempty"`
	Notes       string    `json:"notes" bson:"notes" validate:"omitempty"`
	LastContact time.Time `json:"last_contact" bson:"lastContact"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}

// NewChatContact builds the auto-provisioned contact for a previously
// unseen canonical phone. The email is a placeholder that only exists
// to satisfy the non-null email invariant; it is never used for
// delivery.
func NewChatContact(canonicalPhone, name string) *Contact {
	if name == "" {
		name = fmt.Sprintf("New - %s", canonicalPhone)
	}
	now := time.Now()
	return &Contact{
		UUID:        uuid.NewString(),
		Name:        name,
		Email:       fmt.Sprintf("%s@chat", canonicalPhone),
		Phone:       canonicalPhone,
		Category:    CategoryProspect,
		LeadSource:  SourceOther,
		Tags:        []string{"chat", "auto-created"},
		LastContact: now,
		CreatedAt:   now,
	}
}
