package contact

import "AmigoCRM/entity"

type Core interface {
	CreateContact(contact *entity.Contact) (*entity.Contact, error)
	GetContact(id string) (*entity.Contact, error)
	FindContactByPhone(phone string) (*entity.Contact, error)
	ListContacts() ([]entity.Contact, error)
	UpdateContact(contact *entity.Contact) error
	ConsolidateContacts(loserID, survivorID string) error
	ListConversations(contactID string) ([]entity.Conversation, error)
	DeleteConversation(conversationID string) error
	ClearConversations(contactID string) (int64, error)
	ListOpportunities(contactID string) ([]entity.Opportunity, error)
}
