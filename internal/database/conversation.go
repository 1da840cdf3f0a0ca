package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AmigoCRM/entity"
)

func (m *MongoDB) InsertConversation(conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	collection := connection.Database(m.database).Collection(conversationsCollection)
	_, err = collection.InsertOne(m.ctx, conv)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

func (m *MongoDB) ListConversations(contactID string) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "contact_uuid", Value: contactID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err := cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return conversations, nil
}

func (m *MongoDB) DeleteConversation(id string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	collection := connection.Database(m.database).Collection(conversationsCollection)
	_, err = collection.DeleteOne(m.ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	return nil
}

// DeleteConversations removes the whole history of one contact.
func (m *MongoDB) DeleteConversations(contactID string) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	res, err := collection.DeleteMany(m.ctx, bson.D{{Key: "contact_uuid", Value: contactID}})
	if err != nil {
		return 0, fmt.Errorf("mongodb delete error: %w", err)
	}
	return res.DeletedCount, nil
}

// CountConversationsSince counts a contact's inbound chat messages
// newer than the given time, for unread badges.
func (m *MongoDB) CountConversationsSince(contactID string, since time.Time) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	filter := bson.D{
		{Key: "contact_uuid", Value: contactID},
		{Key: "direction", Value: entity.DirectionIn},
		{Key: "timestamp", Value: bson.D{{Key: "$gt", Value: since}}},
	}
	count, err := collection.CountDocuments(m.ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count error: %w", err)
	}
	return count, nil
}

// LastConversations returns the newest conversation per contact,
// used to enrich the chat list.
func (m *MongoDB) LastConversations() (map[string]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "channel", Value: entity.ChannelChat}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(m.ctx)

	latest := make(map[string]entity.Conversation)
	for cursor.Next(m.ctx) {
		var conv entity.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, fmt.Errorf("mongodb decode error: %w", err)
		}
		if _, ok := latest[conv.ContactUUID]; !ok {
			latest[conv.ContactUUID] = conv
		}
	}
	return latest, cursor.Err()
}
