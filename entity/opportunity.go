package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Opportunity stages.
const (
	StageNew        = "nueva"
	StageContacted  = "contactada"
	StageNegotiated = "negociacion"
	StageWon        = "ganada"
	StageLost       = "perdida"
)

// Opportunity is a sales opportunity attached to a contact. The
// reconciler creates one with default stage and zero value per
// auto-provisioned contact; everything else about opportunities is
// managed through the CRM.
type Opportunity struct {
	UUID        string    `json:"uuid" bson:"uuid"`
	ContactUUID string    `json:"contact_uuid" bson:"contact_uuid"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Stage       string    `json:"stage" bson:"stage" validate:"omitempty,oneof=nueva contactada negociacion ganada perdida"`
	Value       float64   `json:"value" bson:"value"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}

// NewDefaultOpportunity is the zero-value opportunity created alongside
// an auto-provisioned contact.
func NewDefaultOpportunity(contact *Contact) *Opportunity {
	return &Opportunity{
		UUID:        uuid.NewString(),
		ContactUUID: contact.UUID,
		Title:       fmt.Sprintf("Venta - %s", contact.Name),
		Stage:       StageNew,
		Value:       0,
		CreatedAt:   time.Now(),
	}
}
