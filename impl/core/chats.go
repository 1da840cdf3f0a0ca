package core

import (
	"fmt"
	"sort"
	"time"

	"log/slog"

	"AmigoCRM/entity"
)

// GetActiveChats returns one row per contact with chat history,
// newest first, enriched with the caller's unread counts.
func (c *Core) GetActiveChats(principal string) ([]entity.ChatSummary, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	latest, err := c.repo.LastConversations()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	receipts := c.reads[principal]
	readAt := make(map[string]time.Time, len(receipts))
	for id, at := range receipts {
		readAt[id] = at
	}
	c.mu.Unlock()

	summaries := make([]entity.ChatSummary, 0, len(latest))
	for contactID, conv := range latest {
		summary := entity.ChatSummary{
			ContactUUID:     contactID,
			LastMessage:     conv.Content,
			LastMessageTime: conv.Timestamp,
		}

		contact, err := c.repo.FindContactByID(contactID)
		if err != nil {
			c.log.Error("failed to load chat contact",
				slog.String("contact", contactID),
				slog.String("error", err.Error()),
			)
		}
		if contact != nil {
			summary.Phone = contact.Phone
			summary.Name = contact.Name
		}

		unread, err := c.repo.CountConversationsSince(contactID, readAt[contactID])
		if err != nil {
			c.log.Error("failed to count unread messages",
				slog.String("contact", contactID),
				slog.String("error", err.Error()),
			)
		}
		summary.UnreadCount = int(unread)

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageTime.After(summaries[j].LastMessageTime)
	})
	return summaries, nil
}

// HandleMarkRead records that the CRM user has seen a chat up to now.
func (c *Core) HandleMarkRead(principal, rawPhone string) error {
	contact, err := c.findByAnyPhone(rawPhone)
	if err != nil {
		return err
	}
	if contact == nil {
		return fmt.Errorf("no contact for phone %s", rawPhone)
	}

	c.mu.Lock()
	if c.reads[principal] == nil {
		c.reads[principal] = make(map[string]time.Time)
	}
	c.reads[principal][contact.UUID] = time.Now()
	c.mu.Unlock()

	return nil
}
