package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/fileurl"
	"AmigoCRM/internal/phone"
)

// mediaLinkTTL bounds how long a signed media download link stays valid.
const mediaLinkTTL = 24 * time.Hour

// CreateContact stores a manually created contact. The phone is
// normalized so manual entry and chat auto-provisioning land on the
// same canonical form, and the one-contact-per-phone rule holds.
func (c *Core) CreateContact(contact *entity.Contact) (*entity.Contact, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	if contact.Phone != "" {
		canonical, err := c.phones.Canonicalize(contact.Phone)
		if err != nil {
			return nil, fmt.Errorf("phone %q: %w", contact.Phone, err)
		}
		existing, err := c.findByAnyPhone(canonical)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("phone %s already belongs to contact %s", canonical, existing.UUID)
		}
		contact.Phone = canonical
	}

	// Email is always present: synthesize the same placeholder the
	// chat auto-provisioning writes when none was given.
	if contact.Email == "" && contact.Phone != "" {
		contact.Email = fmt.Sprintf("%s@chat", contact.Phone)
	}

	if contact.UUID == "" {
		contact.UUID = uuid.NewString()
	}
	if contact.Category == "" {
		contact.Category = entity.CategoryProspect
	}
	if contact.LeadSource == "" {
		contact.LeadSource = entity.SourceOther
	}
	contact.CreatedAt = time.Now()

	if err := validator.New().Struct(contact); err != nil {
		return nil, fmt.Errorf("invalid contact: %w", err)
	}

	if err := c.repo.InsertContact(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (c *Core) GetContact(id string) (*entity.Contact, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	return c.repo.FindContactByID(id)
}

// FindContactByPhone accepts any raw phone shape and walks the
// equivalent stored variants.
func (c *Core) FindContactByPhone(rawPhone string) (*entity.Contact, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	return c.findByAnyPhone(rawPhone)
}

func (c *Core) findByAnyPhone(rawPhone string) (*entity.Contact, error) {
	for _, variant := range c.phones.Variants(rawPhone) {
		contact, err := c.repo.FindContactByPhone(variant)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}
	return nil, nil
}

func (c *Core) ListContacts() ([]entity.Contact, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	return c.repo.ListContacts()
}

func (c *Core) UpdateContact(contact *entity.Contact) error {
	if c.repo == nil {
		return fmt.Errorf("repository is not set")
	}

	if contact.Phone != "" {
		canonical, err := c.phones.Canonicalize(contact.Phone)
		if err != nil {
			if errors.Is(err, phone.ErrUnresolvableIdentity) {
				return fmt.Errorf("phone %q: %w", contact.Phone, err)
			}
			return err
		}
		contact.Phone = canonical
	}

	return c.repo.UpdateContact(contact)
}

// ConsolidateContacts merges a duplicate into a survivor. The
// duplicate's conversations and opportunities are re-parented before
// it is removed.
func (c *Core) ConsolidateContacts(loserID, survivorID string) error {
	if c.repo == nil {
		return fmt.Errorf("repository is not set")
	}

	survivor, err := c.repo.FindContactByID(survivorID)
	if err != nil {
		return err
	}
	if survivor == nil {
		return fmt.Errorf("survivor contact %s not found", survivorID)
	}

	return c.repo.DeleteContact(loserID, survivorID)
}

func (c *Core) ListConversations(contactID string) ([]entity.Conversation, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	conversations, err := c.repo.ListConversations(contactID)
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		if media := conversations[i].Media; media != nil && media.Filename != "" {
			media.URL = fileurl.SignURL(media.Filename, c.authKey, mediaLinkTTL)
		}
	}
	return conversations, nil
}

func (c *Core) DeleteConversation(conversationID string) error {
	if c.repo == nil {
		return fmt.Errorf("repository is not set")
	}
	return c.repo.DeleteConversation(conversationID)
}

func (c *Core) ClearConversations(contactID string) (int64, error) {
	if c.repo == nil {
		return 0, fmt.Errorf("repository is not set")
	}
	return c.repo.DeleteConversations(contactID)
}

func (c *Core) ListOpportunities(contactID string) ([]entity.Opportunity, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	return c.repo.ListOpportunities(contactID)
}
