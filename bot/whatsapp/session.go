package whatsapp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	qrcode "github.com/skip2/go-qrcode"

	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
	"AmigoCRM/internal/phone"
)

// Session states.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateAwaitingPair  State = "awaiting_pairing"
	StateReady         State = "ready"
	StateDisconnected  State = "disconnected"
)

var (
	// ErrNotConnected is returned by Send while the session is not
	// Ready; the message text doubles as the user-visible reason.
	ErrNotConnected = errors.New("WhatsApp not connected")
	// ErrUnregisteredRecipient means the destination phone is not an
	// endpoint on the network.
	ErrUnregisteredRecipient = errors.New("recipient is not registered on WhatsApp")
)

// Status is the side-effect-free view of the session.
type Status struct {
	State     State    `json:"state"`
	QRPending bool     `json:"qr_pending"`
	QR        string   `json:"qr,omitempty"`
	Identity  Identity `json:"identity"`
}

// StatusNotifier pushes lifecycle changes to live CRM clients.
type StatusNotifier interface {
	BroadcastSessionStatus(status Status)
}

// Manager owns the single transport session per process: it drives
// the state machine, holds the pairing QR while one is pending, and
// exposes the outbound send operation. Sends are not persisted here;
// the transport's own created event drives the reconciler, which
// keeps a single write path whether a message left through this API
// or straight from the paired device.
type Manager struct {
	factory    TransportFactory
	reconciler *Reconciler
	phones     phone.Normalizer
	log        *slog.Logger

	mu        sync.Mutex
	transport Transport
	state     State
	qr        string
	identity  Identity
	notifier  StatusNotifier
}

func NewManager(factory TransportFactory, reconciler *Reconciler, phones phone.Normalizer, log *slog.Logger) *Manager {
	return &Manager{
		factory:    factory,
		reconciler: reconciler,
		phones:     phones,
		log:        log.With(sl.Module("whatsapp.session")),
		state:      StateUninitialized,
	}
}

func (m *Manager) SetNotifier(n StatusNotifier) {
	m.mu.Lock()
	m.notifier = n
	m.mu.Unlock()
}

// Initialize constructs the transport session and registers the
// lifecycle handlers. A second call while a session object exists is
// a no-op, which guards against concurrent double-initialization.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.transport != nil {
		m.mu.Unlock()
		m.log.Debug("initialize skipped, session already exists")
		return nil
	}

	transport, err := m.factory()
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("build transport: %w", err)
	}
	m.transport = transport
	m.setStateLocked(StateInitializing)
	m.mu.Unlock()

	if m.reconciler != nil {
		m.reconciler.SetTransport(transport)
	}

	handlers := Handlers{
		OnQR:           m.onQR,
		OnReady:        m.onReady,
		OnAuthFailure:  m.onAuthFailure,
		OnDisconnected: m.onDisconnected,
	}
	if m.reconciler != nil {
		handlers.OnMessage = m.reconciler.Handle
	}

	if err := transport.Connect(ctx, handlers); err != nil {
		m.dropSession(StateUninitialized)
		return fmt.Errorf("connect transport: %w", err)
	}

	m.log.Info("session initializing")
	return nil
}

func (m *Manager) onQR(code string) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		m.log.With(sl.Err(err)).Error("encode pairing qr")
		return
	}

	m.mu.Lock()
	m.qr = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	m.setStateLocked(StateAwaitingPair)
	m.mu.Unlock()

	m.log.Info("pairing qr received, awaiting scan")
	m.notify()
}

func (m *Manager) onReady(id Identity) {
	m.mu.Lock()
	m.identity = id
	m.qr = ""
	m.setStateLocked(StateReady)
	m.mu.Unlock()

	m.log.With(
		slog.String("phone", id.Phone),
		slog.String("name", id.Name),
	).Info("session ready")
	m.notify()
}

func (m *Manager) onAuthFailure(reason string) {
	m.mu.Lock()
	m.qr = ""
	m.setStateLocked(StateDisconnected)
	m.mu.Unlock()

	m.log.With(slog.String("reason", reason)).Error("authentication failed")
	m.notify()
}

// onDisconnected drops the session object so a later Initialize can
// build a fresh one. There is no automatic reconnect here; the
// operator decides.
func (m *Manager) onDisconnected() {
	m.dropSession(StateDisconnected)
	m.log.Warn("session disconnected")
	m.notify()
}

func (m *Manager) dropSession(state State) {
	m.mu.Lock()
	m.transport = nil
	m.qr = ""
	m.identity = Identity{}
	m.setStateLocked(state)
	m.mu.Unlock()

	if m.reconciler != nil {
		m.reconciler.SetTransport(nil)
	}
}

func (m *Manager) setStateLocked(state State) {
	m.state = state
}

func (m *Manager) notify() {
	m.mu.Lock()
	notifier := m.notifier
	m.mu.Unlock()
	if notifier != nil {
		notifier.BroadcastSessionStatus(m.Status())
	}
}

// Status is safe from any state and has no side effects.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:     m.state,
		QRPending: m.qr != "",
		QR:        m.qr,
		Identity:  m.identity,
	}
}

// Send dispatches a text message. It fails fast while the session is
// not Ready, normalizes the destination to the transport's dialing
// format, and verifies the destination is a registered endpoint.
func (m *Manager) Send(ctx context.Context, rawPhone, text string) error {
	m.mu.Lock()
	transport := m.transport
	state := m.state
	m.mu.Unlock()

	if state != StateReady || transport == nil {
		return ErrNotConnected
	}

	dial, err := m.phones.DialFormat(rawPhone)
	if err != nil {
		return fmt.Errorf("destination %q: %w", rawPhone, err)
	}

	chatID, registered, err := transport.IsRegistered(ctx, dial)
	if err != nil {
		return fmt.Errorf("registration check for %s: %w", dial, err)
	}
	if !registered {
		return fmt.Errorf("%s: %w", dial, ErrUnregisteredRecipient)
	}

	if err := transport.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("send to %s: %w", dial, err)
	}

	m.log.With(slog.String("to", dial)).Info("message sent")
	return nil
}

// Chats is a read-through to the transport for the CRM chat list.
func (m *Manager) Chats(ctx context.Context) ([]entity.ChatSummary, error) {
	m.mu.Lock()
	transport := m.transport
	state := m.state
	m.mu.Unlock()

	if state != StateReady || transport == nil {
		return nil, ErrNotConnected
	}
	return transport.Chats(ctx)
}

// Disconnect tears the session down and resets to Uninitialized.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	transport := m.transport
	m.mu.Unlock()

	if transport != nil {
		transport.Disconnect()
	}
	m.dropSession(StateUninitialized)
	m.log.Info("session torn down")
	m.notify()
}
