// Package meow adapts a whatsmeow client to the transport surface the
// session manager and reconciler are written against.
package meow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"google.golang.org/protobuf/proto"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"AmigoCRM/bot/whatsapp"
	"AmigoCRM/entity"
	"AmigoCRM/internal/lib/sl"
)

// Client drives one whatsmeow session backed by a sqlite device store.
type Client struct {
	storePath string
	log       *slog.Logger

	mu       sync.Mutex
	client   *whatsmeow.Client
	handlers whatsapp.Handlers
}

func New(storePath string, log *slog.Logger) *Client {
	return &Client{
		storePath: storePath,
		log:       log.With(sl.Module("whatsapp.meow")),
	}
}

// Factory returns a transport factory for the session manager.
func Factory(storePath string, log *slog.Logger) whatsapp.TransportFactory {
	return func() (whatsapp.Transport, error) {
		return New(storePath, log), nil
	}
}

// Connect opens the device store, builds the client and starts the
// session. When no device is paired yet the pairing QR channel is
// drained into the OnQR handler until a scan or a timeout.
func (c *Client) Connect(ctx context.Context, handlers whatsapp.Handlers) error {
	container, err := sqlstore.New(ctx, "sqlite3", "file:"+c.storePath+"?_foreign_keys=on", waLog.Noop)
	if err != nil {
		return fmt.Errorf("open device store %s: %w", c.storePath, err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("load device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLog.Noop)
	client.EnableAutoReconnect = true
	client.AutoTrustIdentity = true
	client.AddEventHandler(c.handleEvent)

	c.mu.Lock()
	c.client = client
	c.handlers = handlers
	c.mu.Unlock()

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("open qr channel: %w", err)
		}
		if err := client.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		go c.drainQR(qrChan)
		return nil
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Client) drainQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			if c.handlers.OnQR != nil {
				c.handlers.OnQR(evt.Code)
			}
		case whatsmeow.QRChannelSuccess.Event:
			// events.Connected carries the ready signal.
			return
		case whatsmeow.QRChannelTimeout.Event:
			c.log.Warn("pairing qr expired without a scan")
			if c.handlers.OnDisconnected != nil {
				c.handlers.OnDisconnected()
			}
			return
		case "error":
			c.log.With(sl.Err(evt.Error)).Error("pairing qr channel failed")
			if c.handlers.OnAuthFailure != nil {
				c.handlers.OnAuthFailure("pairing failed")
			}
			return
		}
	}
}

func (c *Client) handleEvent(raw interface{}) {
	switch e := raw.(type) {
	case *events.Connected:
		c.fireReady()
	case *events.PairSuccess:
		c.log.With(slog.String("jid", e.ID.String())).Info("device paired")
	case *events.LoggedOut:
		c.log.With(slog.String("reason", e.Reason.String())).Warn("logged out by server")
		if c.handlers.OnAuthFailure != nil {
			c.handlers.OnAuthFailure(e.Reason.String())
		}
	case *events.StreamReplaced:
		c.log.Warn("stream replaced by another session")
		if c.handlers.OnDisconnected != nil {
			c.handlers.OnDisconnected()
		}
	case *events.Disconnected:
		if c.handlers.OnDisconnected != nil {
			c.handlers.OnDisconnected()
		}
	case *events.ConnectFailure:
		c.log.With(slog.String("reason", e.Reason.String())).Error("connect failure")
		if c.handlers.OnAuthFailure != nil {
			c.handlers.OnAuthFailure(e.Reason.String())
		}
	case *events.Message:
		c.fireMessage(e)
	}
}

func (c *Client) fireReady() {
	client := c.getClient()
	if client == nil || client.Store.ID == nil || c.handlers.OnReady == nil {
		return
	}
	c.handlers.OnReady(whatsapp.Identity{
		Phone: client.Store.ID.User,
		Name:  client.Store.PushName,
	})
}

// fireMessage fans one whatsmeow message out to both event
// registrations: inbound fires only for messages from others, created
// fires for every message so the reconciler sees the session owner's
// traffic from any device.
func (c *Client) fireMessage(e *events.Message) {
	if c.handlers.OnMessage == nil || e.Message == nil {
		return
	}

	evt := c.messageEvent(e)

	if !e.Info.IsFromMe {
		c.handlers.OnMessage(whatsapp.KindInbound, evt)
	}
	c.handlers.OnMessage(whatsapp.KindCreated, evt)
}

func (c *Client) messageEvent(e *events.Message) whatsapp.MessageEvent {
	evt := whatsapp.MessageEvent{
		ID:        e.Info.ID,
		ChatID:    e.Info.Chat.String(),
		SenderID:  e.Info.Sender.String(),
		PushName:  e.Info.PushName,
		FromMe:    e.Info.IsFromMe,
		Group:     e.Info.Chat.Server == types.GroupServer,
		Broadcast: e.Info.Chat.Server == types.BroadcastServer,
		Text:      messageText(e.Message),
		Timestamp: e.Info.Timestamp,
	}

	switch e.Info.Sender.Server {
	case types.DefaultUserServer:
		evt.SenderPhone = "+" + e.Info.Sender.User
	case types.HiddenUserServer:
		// linked-device sender; the lid map learned the real phone
		// during pairing sync
		if p, err := c.ChatPhone(context.Background(), e.Info.Sender.String()); err == nil {
			evt.SenderPhone = p
		}
	}

	if mimeType, sticker, ok := mediaInfo(e.Message); ok {
		client := c.getClient()
		msg := e.Message
		evt.Media = &whatsapp.Media{
			MIMEType: mimeType,
			Sticker:  sticker,
			Download: func(ctx context.Context) ([]byte, error) {
				if client == nil {
					return nil, errors.New("client gone")
				}
				return client.DownloadAny(ctx, msg)
			},
		}
	}

	return evt
}

func messageText(msg *waE2E.Message) string {
	switch {
	case msg.GetConversation() != "":
		return msg.GetConversation()
	case msg.GetExtendedTextMessage() != nil:
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage() != nil:
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage() != nil:
		return msg.GetVideoMessage().GetCaption()
	case msg.GetDocumentMessage() != nil:
		return msg.GetDocumentMessage().GetCaption()
	}
	return ""
}

func mediaInfo(msg *waE2E.Message) (mimeType string, sticker bool, ok bool) {
	switch {
	case msg.GetImageMessage() != nil:
		return msg.GetImageMessage().GetMimetype(), false, true
	case msg.GetAudioMessage() != nil:
		return msg.GetAudioMessage().GetMimetype(), false, true
	case msg.GetVideoMessage() != nil:
		return msg.GetVideoMessage().GetMimetype(), false, true
	case msg.GetDocumentMessage() != nil:
		return msg.GetDocumentMessage().GetMimetype(), false, true
	case msg.GetStickerMessage() != nil:
		return msg.GetStickerMessage().GetMimetype(), true, true
	}
	return "", false, false
}

func (c *Client) getClient() *whatsmeow.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

func (c *Client) Disconnect() {
	client := c.getClient()
	if client != nil {
		client.Disconnect()
	}
}

// IsRegistered asks the network whether the dial phone is an
// endpoint and resolves its canonical chat id.
func (c *Client) IsRegistered(ctx context.Context, dialPhone string) (string, bool, error) {
	client := c.getClient()
	if client == nil {
		return "", false, errors.New("client gone")
	}

	infos, err := client.IsOnWhatsApp(ctx, []string{"+" + dialPhone})
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", dialPhone, err)
	}
	if len(infos) == 0 || !infos[0].IsIn {
		return "", false, nil
	}
	return infos[0].JID.String(), true, nil
}

func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	client := c.getClient()
	if client == nil {
		return errors.New("client gone")
	}

	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	_, err = client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	return err
}

// ChatPhone resolves the phone behind a chat id. Linked-device chats
// carry an opaque identifier; the device store's lid map holds the
// real phone learned during pairing sync.
func (c *Client) ChatPhone(ctx context.Context, chatID string) (string, error) {
	client := c.getClient()
	if client == nil {
		return "", errors.New("client gone")
	}

	jid, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	if jid.Server == types.HiddenUserServer {
		pn, err := client.Store.LIDs.GetPNForLID(ctx, jid.ToNonAD())
		if err != nil {
			return "", fmt.Errorf("lid map lookup %s: %w", jid, err)
		}
		if pn.IsEmpty() {
			return "", fmt.Errorf("no phone known for %s", jid)
		}
		return "+" + pn.User, nil
	}

	return "+" + jid.User, nil
}

func (c *Client) ContactName(ctx context.Context, chatID string) (string, error) {
	client := c.getClient()
	if client == nil {
		return "", errors.New("client gone")
	}

	jid, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	info, err := client.Store.Contacts.GetContact(ctx, jid)
	if err != nil {
		return "", fmt.Errorf("contact lookup %s: %w", jid, err)
	}
	if !info.Found {
		return "", nil
	}
	if info.FullName != "" {
		return info.FullName, nil
	}
	return info.PushName, nil
}

// Chats lists the synced address book as chat summaries, sorted by
// name. Message history stays in the CRM store; this only covers who
// is reachable.
func (c *Client) Chats(ctx context.Context) ([]entity.ChatSummary, error) {
	client := c.getClient()
	if client == nil {
		return nil, errors.New("client gone")
	}

	contacts, err := client.Store.Contacts.GetAllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	summaries := make([]entity.ChatSummary, 0, len(contacts))
	for jid, info := range contacts {
		if jid.Server != types.DefaultUserServer {
			continue
		}
		name := info.FullName
		if name == "" {
			name = info.PushName
		}
		summaries = append(summaries, entity.ChatSummary{
			Phone: "+" + jid.User,
			Name:  name,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		ni, nj := strings.ToLower(summaries[i].Name), strings.ToLower(summaries[j].Name)
		if ni != nj {
			return ni < nj
		}
		return summaries[i].Phone < summaries[j].Phone
	})
	return summaries, nil
}
