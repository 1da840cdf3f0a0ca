package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/media"
	"AmigoCRM/internal/phone"
)

// Resolved phones must be dialable; anything outside this digit range
// is a corrupt identity (usually an opaque id mistaken for a phone).
const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Classification is the outcome of the partition rule: each logical
// message is handled by exactly one of the two event registrations,
// never both, never neither.
type Classification int

const (
	ClassIgnored Classification = iota
	ClassInbound
	ClassOutbound
)

// Classify applies the partition rule shared by both event entry
// points. The inbound registration takes messages from others; the
// created registration takes the session owner's messages (including
// ones sent from a linked device). Group and broadcast pseudo-chats
// never reach contact reconciliation.
func Classify(kind EventKind, evt MessageEvent) Classification {
	if evt.Group || evt.Broadcast || isGroupID(evt.ChatID) || isBroadcastID(evt.ChatID) {
		return ClassIgnored
	}
	switch kind {
	case KindInbound:
		if !evt.FromMe {
			return ClassInbound
		}
	case KindCreated:
		if evt.FromMe {
			return ClassOutbound
		}
	}
	return ClassIgnored
}

// ConversationStore is the persistence surface the reconciler writes
// through.
type ConversationStore interface {
	InsertConversation(conv *entity.Conversation) error
	TouchContact(id string, at time.Time) error
}

// ContactResolver finds or auto-provisions the contact owning a raw
// phone.
type ContactResolver interface {
	ResolveOrCreate(rawPhone, nameHint string) (*entity.Contact, error)
}

// MediaStore persists downloaded attachments.
type MediaStore interface {
	Save(name string, data []byte) (string, error)
}

// Notifier pushes reconciled messages to live CRM clients.
type Notifier interface {
	BroadcastMessage(conv entity.Conversation)
}

// Reconciler maps raw transport message events to durable
// conversation records and contact side effects.
type Reconciler struct {
	store    ConversationStore
	resolver ContactResolver
	media    MediaStore
	log      *slog.Logger

	mu        sync.RWMutex
	transport Transport
	notifier  Notifier
}

func NewReconciler(store ConversationStore, resolver ContactResolver, mediaStore MediaStore, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		resolver: resolver,
		media:    mediaStore,
		log:      log.With(sl.Module("whatsapp.reconciler")),
	}
}

// SetTransport hands the reconciler the live session's transport for
// chat lookups. The manager calls it on connect and with nil on
// teardown; lookups degrade gracefully while it is nil.
func (r *Reconciler) SetTransport(t Transport) {
	r.mu.Lock()
	r.transport = t
	r.mu.Unlock()
}

func (r *Reconciler) SetNotifier(n Notifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}

func (r *Reconciler) getTransport() Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transport
}

// Handle is the top of both event registrations. Nothing escapes:
// one malformed event must never crash the session or block the ones
// behind it.
func (r *Reconciler) Handle(kind EventKind, evt MessageEvent) {
	logger := r.log.With(
		slog.String("event", kind.String()),
		slog.String("chat", evt.ChatID),
		slog.String("message_id", evt.ID),
	)

	defer func() {
		if p := recover(); p != nil {
			logger.With(slog.Any("panic", p)).Error("event handler panicked, event dropped")
		}
	}()

	if err := r.process(context.Background(), kind, evt); err != nil {
		logger.With(sl.Err(err)).Error("event dropped")
	}
}

func (r *Reconciler) process(ctx context.Context, kind EventKind, evt MessageEvent) error {
	class := Classify(kind, evt)
	if class == ClassIgnored {
		return nil
	}

	rawPhone, err := r.counterpartyPhone(ctx, class, evt)
	if err != nil {
		return fmt.Errorf("counterparty phone: %w", err)
	}

	// Validation gate: reject identities that cannot be phones before
	// anything is persisted.
	if digits := phone.Digits(rawPhone); len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return fmt.Errorf("resolved identity %q has %d digits, not a phone", rawPhone, len(phone.Digits(rawPhone)))
	}

	content := strings.TrimSpace(evt.Text)
	var mediaRef *entity.MediaRef
	if evt.Media != nil {
		mediaRef = r.saveMedia(ctx, evt)
		if content == "" {
			content = "[" + mediaKind(evt.Media) + "]"
		}
	}

	contact, err := r.resolver.ResolveOrCreate(rawPhone, r.displayName(ctx, class, evt))
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}

	direction := entity.DirectionIn
	if class == ClassOutbound {
		direction = entity.DirectionOut
	}

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	conv := &entity.Conversation{
		ContactUUID: contact.UUID,
		Type:        entity.TypeChat,
		Direction:   direction,
		Channel:     entity.ChannelChat,
		Content:     content,
		Media:       mediaRef,
		Timestamp:   ts,
	}
	if err := r.store.InsertConversation(conv); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	if err := r.store.TouchContact(contact.UUID, ts); err != nil {
		return fmt.Errorf("touch contact %s: %w", contact.UUID, err)
	}

	r.mu.RLock()
	notifier := r.notifier
	r.mu.RUnlock()
	if notifier != nil {
		notifier.BroadcastMessage(*conv)
	}

	return nil
}

// counterpartyPhone recovers the real counterparty's phone. For
// outbound events the message's sender accessor reports the session
// owner, so the phone always comes from the chat id. Whenever the id
// at hand is an opaque linked-device identifier, inbound sender or
// outbound chat, the transport's chat lookup is the only source of
// truth.
func (r *Reconciler) counterpartyPhone(ctx context.Context, class Classification, evt MessageEvent) (string, error) {
	if class == ClassOutbound {
		if isOpaqueID(evt.ChatID) {
			return r.lookupChatPhone(ctx, evt.ChatID)
		}
		return bareID(evt.ChatID), nil
	}

	if evt.SenderPhone != "" {
		return evt.SenderPhone, nil
	}
	if isOpaqueID(evt.SenderID) {
		return r.lookupChatPhone(ctx, evt.ChatID)
	}
	return bareID(evt.SenderID), nil
}

func (r *Reconciler) lookupChatPhone(ctx context.Context, chatID string) (string, error) {
	t := r.getTransport()
	if t == nil {
		return "", fmt.Errorf("opaque id %q with no transport attached", chatID)
	}
	p, err := t.ChatPhone(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("chat lookup for opaque id %q: %w", chatID, err)
	}
	return p, nil
}

// displayName is best-effort; a failed lookup degrades to the
// auto-provisioning placeholder, it never blocks persistence.
func (r *Reconciler) displayName(ctx context.Context, class Classification, evt MessageEvent) string {
	if class == ClassInbound && evt.PushName != "" {
		return evt.PushName
	}
	t := r.getTransport()
	if t == nil {
		return ""
	}
	name, err := t.ContactName(ctx, evt.ChatID)
	if err != nil {
		r.log.With(
			slog.String("chat", evt.ChatID),
			sl.Err(err),
		).Debug("contact name lookup failed")
		return ""
	}
	return name
}

// saveMedia downloads and persists an attachment. Failures are
// non-fatal: the message still gets its conversation record, just
// without the media reference.
func (r *Reconciler) saveMedia(ctx context.Context, evt MessageEvent) *entity.MediaRef {
	logger := r.log.With(slog.String("message_id", evt.ID))

	if evt.Media.Download == nil {
		logger.Warn("media event without download handle")
		return nil
	}
	data, err := evt.Media.Download(ctx)
	if err != nil {
		logger.With(sl.Err(err)).Warn("media download failed, persisting message without it")
		return nil
	}

	name := media.Filename(evt.Timestamp, evt.ID, evt.Media.MIMEType)
	if _, err := r.media.Save(name, data); err != nil {
		logger.With(sl.Err(err)).Warn("media save failed, persisting message without it")
		return nil
	}

	return &entity.MediaRef{
		Kind:     mediaKind(evt.Media),
		Filename: name,
		MIMEType: evt.Media.MIMEType,
	}
}

// mediaKind classifies a declared content type; anything unrecognized
// is filed as a document.
func mediaKind(m *Media) string {
	if m.Sticker {
		return entity.MediaSticker
	}
	switch {
	case strings.HasPrefix(m.MIMEType, "image/"):
		return entity.MediaImage
	case strings.HasPrefix(m.MIMEType, "audio/"):
		return entity.MediaAudio
	case strings.HasPrefix(m.MIMEType, "video/"):
		return entity.MediaVideo
	default:
		return entity.MediaDocument
	}
}
