package whatsapp

import (
	"context"

	botwa "AmigoCRM/bot/whatsapp"
	"AmigoCRM/entity"
)

type Core interface {
	ConnectWhatsApp(ctx context.Context) error
	WhatsAppStatus() botwa.Status
	SendWhatsAppMessage(ctx context.Context, phone, text string) error
	GetChats(ctx context.Context) ([]entity.ChatSummary, error)
	DisconnectWhatsApp()
}
