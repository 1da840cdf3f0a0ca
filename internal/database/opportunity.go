package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"AmigoCRM/entity"
)

func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid object id %q: %w", id, err)
	}
	return oid, nil
}

func (m *MongoDB) InsertOpportunity(opp *entity.Opportunity) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(opportunitiesCollection)
	_, err = collection.InsertOne(m.ctx, opp)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

func (m *MongoDB) ListOpportunities(contactID string) ([]entity.Opportunity, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(opportunitiesCollection)
	filter := bson.D{}
	if contactID != "" {
		filter = bson.D{{Key: "contact_uuid", Value: contactID}}
	}
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(m.ctx)

	var opportunities []entity.Opportunity
	if err := cursor.All(m.ctx, &opportunities); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return opportunities, nil
}
