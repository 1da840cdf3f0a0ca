package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation record types.
const (
	TypeNote    = "note"
	TypeCall    = "call"
	TypeEmail   = "email"
	TypeMeeting = "meeting"
	TypeChat    = "chat"
)

// Directions keep the Spanish values the CRM UI filters on.
const (
	DirectionIn  = "entrante"
	DirectionOut = "saliente"
)

// Channels.
const (
	ChannelManual = "manual"
	ChannelEmail  = "email"
	ChannelChat   = "chat"
	ChannelPhone  = "phone"
)

// Media kinds.
const (
	MediaImage    = "image"
	MediaAudio    = "audio"
	MediaVideo    = "video"
	MediaDocument = "document"
	MediaSticker  = "sticker"
)

// MediaRef points at a file in the media store. Filename is the
// collision-resistant name the store generated; the download URL is
// derived from it at read time.
type MediaRef struct {
	Kind     string `json:"kind" bson:"kind"`
	Filename string `json:"filename" bson:"filename"`
	MIMEType string `json:"mime_type" bson:"mime_type"`
	URL      string `json:"url,omitempty" bson:"-"`
}

// Conversation is one immutable entry in a contact's history. The
// reconciler writes exactly one per logical transport message.
type Conversation struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ContactUUID string             `json:"contact_uuid" bson:"contact_uuid"`
	Type        string             `json:"type" bson:"type"`
	Direction   string             `json:"direction" bson:"direction"`
	Channel     string             `json:"channel" bson:"channel"`
	Content     string             `json:"content" bson:"content"`
	Media       *MediaRef          `json:"media,omitempty" bson:"media,omitempty"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	CreatedAt   time.Time          `json:"created_at" bson:"createdAt"`
}

// ChatSummary is one row of the CRM chat list.
type ChatSummary struct {
	ContactUUID     string    `json:"contact_uuid,omitempty" bson:"contact_uuid,omitempty"`
	Phone           string    `json:"phone" bson:"phone"`
	Name            string    `json:"name" bson:"name"`
	LastMessage     string    `json:"last_message" bson:"last_message"`
	LastMessageTime time.Time `json:"last_message_time" bson:"last_message_time"`
	UnreadCount     int       `json:"unread_count" bson:"unread_count"`
}
