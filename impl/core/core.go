package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"AmigoCRM/bot/whatsapp"
	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/phone"
	"AmigoCRM/internal/service/campaign"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)

	FindContactByPhone(phone string) (*entity.Contact, error)
	FindContactByID(id string) (*entity.Contact, error)
	InsertContact(contact *entity.Contact) error
	UpdateContact(contact *entity.Contact) error
	TouchContact(id string, at time.Time) error
	ListContacts() ([]entity.Contact, error)
	DeleteContact(id, survivorID string) error

	ListConversations(contactID string) ([]entity.Conversation, error)
	DeleteConversation(id string) error
	DeleteConversations(contactID string) (int64, error)
	LastConversations() (map[string]entity.Conversation, error)
	CountConversationsSince(contactID string, since time.Time) (int64, error)

	InsertOpportunity(opp *entity.Opportunity) error
	ListOpportunities(contactID string) ([]entity.Opportunity, error)
}

// Session is the WhatsApp session lifecycle surface.
type Session interface {
	Initialize(ctx context.Context) error
	Status() whatsapp.Status
	Send(ctx context.Context, rawPhone, text string) error
	Chats(ctx context.Context) ([]entity.ChatSummary, error)
	Disconnect()
}

// Resolver finds or auto-provisions contacts by phone.
type Resolver interface {
	ResolveOrCreate(rawPhone, nameHint string) (*entity.Contact, error)
}

type CampaignService interface {
	SendToPhones(ctx context.Context, phones []string, text string) campaign.Report
	SendToCategory(ctx context.Context, category, text string) (campaign.Report, error)
}

type MediaStore interface {
	Open(name string) ([]byte, string, error)
}

type Core struct {
	repo     Repository
	session  Session
	resolver Resolver
	campaign CampaignService
	media    MediaStore
	phones   phone.Normalizer
	authKey  string
	log      *slog.Logger

	mu    sync.Mutex
	keys  map[string]string
	reads map[string]map[string]time.Time
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:    log.With(sl.Module("core")),
		phones: phone.NewNormalizer("52", "1"),
		keys:   make(map[string]string),
		reads:  make(map[string]map[string]time.Time),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetSession(session Session) {
	c.session = session
}

func (c *Core) SetResolver(resolver Resolver) {
	c.resolver = resolver
}

func (c *Core) SetCampaignService(service CampaignService) {
	c.campaign = service
}

func (c *Core) SetMediaStore(media MediaStore) {
	c.media = media
}

func (c *Core) SetPhones(phones phone.Normalizer) {
	c.phones = phones
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}
