package core

import (
	"context"
	"fmt"

	"AmigoCRM/bot/whatsapp"
	"AmigoCRM/entity"
	"AmigoCRM/internal/service/campaign"
)

func (c *Core) ConnectWhatsApp(ctx context.Context) error {
	if c.session == nil {
		return fmt.Errorf("session is not set")
	}
	return c.session.Initialize(ctx)
}

func (c *Core) WhatsAppStatus() whatsapp.Status {
	if c.session == nil {
		return whatsapp.Status{State: whatsapp.StateUninitialized}
	}
	return c.session.Status()
}

func (c *Core) SendWhatsAppMessage(ctx context.Context, phone, text string) error {
	if c.session == nil {
		return whatsapp.ErrNotConnected
	}
	return c.session.Send(ctx, phone, text)
}

func (c *Core) GetChats(ctx context.Context) ([]entity.ChatSummary, error) {
	if c.session == nil {
		return nil, whatsapp.ErrNotConnected
	}
	return c.session.Chats(ctx)
}

func (c *Core) DisconnectWhatsApp() {
	if c.session != nil {
		c.session.Disconnect()
	}
}

func (c *Core) SendCampaign(phones []string, category, text string) (campaign.Report, error) {
	if c.campaign == nil {
		return campaign.Report{}, fmt.Errorf("campaign service is not set")
	}

	if len(phones) > 0 {
		return c.campaign.SendToPhones(context.Background(), phones, text), nil
	}
	return c.campaign.SendToCategory(context.Background(), category, text)
}
