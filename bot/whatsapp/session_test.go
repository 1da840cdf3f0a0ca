package whatsapp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AmigoCRM/entity"
	"AmigoCRM/internal/phone"
)

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) BroadcastSessionStatus(status Status) {
	r.mu.Lock()
	r.statuses = append(r.statuses, status)
	r.mu.Unlock()
}

func (r *statusRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.statuses))
	for i, s := range r.statuses {
		out[i] = s.State
	}
	return out
}

func newTestManager(t *testing.T, transport *fakeTransport) (*Manager, *recordingStore) {
	t.Helper()
	store := newRecordingStore()
	rec := NewReconciler(store, newStubResolver(), newMemMedia(), testLogger())
	factory := func() (Transport, error) { return transport, nil }
	return NewManager(factory, rec, phone.NewNormalizer("52", "1"), testLogger()), store
}

func TestInitialStateUninitialized(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeTransport())

	status := mgr.Status()
	assert.Equal(t, StateUninitialized, status.State)
	assert.False(t, status.QRPending)
}

func TestInitializeIsIdempotent(t *testing.T) {
	built := 0
	transport := newFakeTransport()
	store := newRecordingStore()
	rec := NewReconciler(store, newStubResolver(), newMemMedia(), testLogger())
	factory := func() (Transport, error) {
		built++
		return transport, nil
	}
	mgr := NewManager(factory, rec, phone.NewNormalizer("52", "1"), testLogger())

	require.NoError(t, mgr.Initialize(context.Background()))
	require.NoError(t, mgr.Initialize(context.Background()))
	require.NoError(t, mgr.Initialize(context.Background()))

	assert.Equal(t, 1, built, "a live session must not be rebuilt")
	assert.Equal(t, StateInitializing, mgr.Status().State)
}

func TestInitializeConnectFailureResets(t *testing.T) {
	transport := newFakeTransport()
	transport.connectErr = errors.New("dial tcp: refused")
	mgr, _ := newTestManager(t, transport)

	err := mgr.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateUninitialized, mgr.Status().State)

	// A retry builds a fresh session instead of hitting the no-op
	// guard.
	transport.connectErr = nil
	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, StateInitializing, mgr.Status().State)
}

func TestPairingLifecycle(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)
	recorder := &statusRecorder{}
	mgr.SetNotifier(recorder)

	require.NoError(t, mgr.Initialize(context.Background()))

	transport.handlers.OnQR("2@abcdef,xyz,1")
	status := mgr.Status()
	assert.Equal(t, StateAwaitingPair, status.State)
	assert.True(t, status.QRPending)
	assert.True(t, strings.HasPrefix(status.QR, "data:image/png;base64,"))

	transport.handlers.OnReady(Identity{Phone: "5215512345678", Name: "Amigo"})
	status = mgr.Status()
	assert.Equal(t, StateReady, status.State)
	assert.False(t, status.QRPending, "pairing qr must be cleared once ready")
	assert.Empty(t, status.QR)
	assert.Equal(t, "5215512345678", status.Identity.Phone)

	assert.Equal(t, []State{StateAwaitingPair, StateReady}, recorder.states())
}

func TestDisconnectedDropsSessionForReinitialize(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})
	transport.handlers.OnDisconnected()

	status := mgr.Status()
	assert.Equal(t, StateDisconnected, status.State)
	assert.Empty(t, status.Identity.Phone)

	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, StateInitializing, mgr.Status().State)
}

func TestAuthFailureKeepsSessionObject(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnQR("2@abcdef,xyz,1")
	transport.handlers.OnAuthFailure("pairing rejected")

	status := mgr.Status()
	assert.Equal(t, StateDisconnected, status.State)
	assert.False(t, status.QRPending)
}

func TestSendWhileNotConnected(t *testing.T) {
	transport := newFakeTransport()
	mgr, store := newTestManager(t, transport)

	err := mgr.Send(context.Background(), "+525512345678", "hola")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, "WhatsApp not connected", err.Error())
	assert.Empty(t, transport.sent)
	assert.Empty(t, store.conversations, "a refused send must leave no record")

	// Still refused mid-pairing.
	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnQR("2@abcdef,xyz,1")
	err = mgr.Send(context.Background(), "+525512345678", "hola")
	require.ErrorIs(t, err, ErrNotConnected)

	// And again once the session is lost.
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})
	transport.handlers.OnDisconnected()
	err = mgr.Send(context.Background(), "+525512345678", "hola")
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestSendNormalizesAndDispatches(t *testing.T) {
	transport := newFakeTransport()
	transport.registered["525512345678"] = "525512345678" + contactIDSuffix
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})

	// A bare local number reaches the same chat as the full form.
	require.NoError(t, mgr.Send(context.Background(), "5512345678", "hola"))

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "525512345678"+contactIDSuffix, transport.sent[0].chatID)
	assert.Equal(t, "hola", transport.sent[0].text)
}

func TestSendToUnregisteredRecipient(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})

	err := mgr.Send(context.Background(), "+525598765432", "hola")
	require.ErrorIs(t, err, ErrUnregisteredRecipient)
	assert.Empty(t, transport.sent)
}

func TestSendRejectsUnresolvableDestination(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})

	err := mgr.Send(context.Background(), "12345", "hola")
	require.ErrorIs(t, err, phone.ErrUnresolvableIdentity)
}

func TestChatsRequiresReadySession(t *testing.T) {
	transport := newFakeTransport()
	transport.chatSummaries = []entity.ChatSummary{{Phone: "+525512345678", Name: "Ana"}}
	mgr, _ := newTestManager(t, transport)

	_, err := mgr.Chats(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})

	chats, err := mgr.Chats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "+525512345678", chats[0].Phone)
}

func TestDisconnectResetsToUninitialized(t *testing.T) {
	transport := newFakeTransport()
	mgr, _ := newTestManager(t, transport)

	require.NoError(t, mgr.Initialize(context.Background()))
	transport.handlers.OnReady(Identity{Phone: "5215512345678"})

	mgr.Disconnect()

	assert.True(t, transport.disconnected)
	assert.Equal(t, StateUninitialized, mgr.Status().State)

	require.NoError(t, mgr.Initialize(context.Background()))
	assert.Equal(t, StateInitializing, mgr.Status().State)
}
