package chat

import "AmigoCRM/entity"

type Core interface {
	GetActiveChats(principal string) ([]entity.ChatSummary, error)
}
