package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"AmigoCRM/entity"
)

// FindContactByPhone looks up a contact by exact stored phone value.
// Returns (nil, nil) when no contact matches; variant expansion is
// the resolver's job, not the store's.
func (m *MongoDB) FindContactByPhone(phone string) (*entity.Contact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	filter := bson.D{{Key: "phone", Value: phone}}

	var contact entity.Contact
	err = collection.FindOne(m.ctx, filter).Decode(&contact)
	if err != nil {
		return nil, m.findError(err)
	}

	return &contact, nil
}

func (m *MongoDB) FindContactByID(id string) (*entity.Contact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	filter := bson.D{{Key: "uuid", Value: id}}

	var contact entity.Contact
	err = collection.FindOne(m.ctx, filter).Decode(&contact)
	if err != nil {
		return nil, m.findError(err)
	}

	return &contact, nil
}

func (m *MongoDB) InsertContact(contact *entity.Contact) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	_, err = collection.InsertOne(m.ctx, contact)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

func (m *MongoDB) UpdateContact(contact *entity.Contact) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	filter := bson.D{{Key: "uuid", Value: contact.UUID}}
	update := bson.M{"$set": contact}

	_, err = collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// TouchContact bumps the last-contact timestamp after a reconciled
// message.
func (m *MongoDB) TouchContact(id string, at time.Time) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	filter := bson.D{{Key: "uuid", Value: id}}
	update := bson.M{"$set": bson.M{"lastContact": at}}

	_, err = collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

func (m *MongoDB) ListContacts() ([]entity.Contact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactsCollection)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(m.ctx)

	var contacts []entity.Contact
	if err := cursor.All(m.ctx, &contacts); err != nil {
		return nil, fmt.Errorf("mongodb decode error: %w", err)
	}
	return contacts, nil
}

// DeleteContact removes a contact after re-parenting its dependents
// onto survivorID. Contacts are never cascade-deleted: conversations
// and opportunities are moved first, inside the same call.
func (m *MongoDB) DeleteContact(id, survivorID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	reparent := bson.M{"$set": bson.M{"contact_uuid": survivorID}}

	_, err = db.Collection(conversationsCollection).UpdateMany(m.ctx,
		bson.D{{Key: "contact_uuid", Value: id}}, reparent)
	if err != nil {
		return fmt.Errorf("mongodb reparent conversations: %w", err)
	}

	_, err = db.Collection(opportunitiesCollection).UpdateMany(m.ctx,
		bson.D{{Key: "contact_uuid", Value: id}}, reparent)
	if err != nil {
		return fmt.Errorf("mongodb reparent opportunities: %w", err)
	}

	_, err = db.Collection(contactsCollection).DeleteOne(m.ctx, bson.D{{Key: "uuid", Value: id}})
	if err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	return nil
}
