package whatsapp

import (
	"context"
	"strings"
	"time"

	"AmigoCRM/entity"
)

// Identifier markers the transport uses. A normal counterparty chat
// id carries the contact marker; a linked-device chat is keyed by an
// opaque identifier that is not a dialable phone number.
const (
	contactIDSuffix   = "@s.whatsapp.net"
	opaqueIDSuffix    = "@lid"
	broadcastIDSuffix = "@broadcast"
	groupIDSuffix     = "@g.us"
)

// EventKind names the two message notifications the transport emits.
// Inbound fires only for messages from others; Created fires for
// every message, including ones sent from a linked device outside
// this process. The pair overlaps, which is why classification is
// centralized in Classify.
type EventKind int

const (
	KindInbound EventKind = iota
	KindCreated
)

func (k EventKind) String() string {
	if k == KindInbound {
		return "inbound-message"
	}
	return "message-created"
}

// Media describes a binary payload attached to a message. Download
// is wired by the transport adapter and fetches the decrypted bytes.
type Media struct {
	MIMEType string
	Sticker  bool
	Download func(ctx context.Context) ([]byte, error)
}

// MessageEvent is the tagged, validated shape built at the transport
// boundary. SenderPhone comes from the message's own contact
// accessor; for outbound events that accessor reports the session
// owner, never the counterparty, so outbound resolution must go
// through the chat id instead.
type MessageEvent struct {
	ID          string
	ChatID      string
	SenderID    string
	SenderPhone string
	PushName    string
	FromMe      bool
	Group       bool
	Broadcast   bool
	Text        string
	Timestamp   time.Time
	Media       *Media
}

// Identity is the paired session's own phone and display name.
type Identity struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Handlers are the callbacks the session manager registers on the
// transport before connecting.
type Handlers struct {
	OnQR           func(code string)
	OnReady        func(id Identity)
	OnAuthFailure  func(reason string)
	OnDisconnected func()
	OnMessage      func(kind EventKind, evt MessageEvent)
}

// Transport is the narrow surface of the chat client the core uses.
// The whatsmeow-backed implementation lives in the meow subpackage;
// tests script a fake.
type Transport interface {
	Connect(ctx context.Context, handlers Handlers) error
	Disconnect()
	// IsRegistered checks a dial-format phone against the network and
	// returns the chat id to send to.
	IsRegistered(ctx context.Context, dialPhone string) (string, bool, error)
	SendText(ctx context.Context, chatID, text string) error
	// ChatPhone reads the counterparty phone off the chat's contact
	// entity; the only trustworthy source when the chat id is opaque.
	ChatPhone(ctx context.Context, chatID string) (string, error)
	ContactName(ctx context.Context, chatID string) (string, error)
	Chats(ctx context.Context) ([]entity.ChatSummary, error)
}

// TransportFactory builds a fresh transport session. The manager
// calls it once per Initialize.
type TransportFactory func() (Transport, error)

func isOpaqueID(chatID string) bool {
	return strings.HasSuffix(chatID, opaqueIDSuffix)
}

func isBroadcastID(chatID string) bool {
	return strings.HasSuffix(chatID, broadcastIDSuffix)
}

func isGroupID(chatID string) bool {
	return strings.HasSuffix(chatID, groupIDSuffix)
}

// bareID strips the server suffix and any device part from a raw
// identifier: "5215512345678:12@s.whatsapp.net" -> "5215512345678".
func bareID(id string) string {
	if at := strings.IndexByte(id, '@'); at >= 0 {
		id = id[:at]
	}
	if colon := strings.IndexByte(id, ':'); colon >= 0 {
		id = id[:colon]
	}
	return strings.TrimSpace(id)
}
