package mongodb

import (
	"chat-room/domain"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageDocument struct {
	MessageID string    `bson:"message_id"`
	From      string    `bson:"from"`
	To        string    `bson:"to"`
	Text      string    `bson:"text"`
	Type      string    `bson:"type"`
	Time      string    `bson:"time"`
	CreatedAt time.Time `bson:"created_at"`
}

type MessageRepository struct {
	messages *Collection[messageDocument]
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{messages: NewCollection[messageDocument](db, MessagesCollection)}
}

func (r *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	return r.messages.InsertOne(ctx, messageDocument{
		MessageID: message.ID.String(),
		From:      message.From,
		To:        message.To,
		Text:      message.Text,
		Type:      string(message.Type),
		Time:      message.Time,
		CreatedAt: message.CreatedAt,
	})
}

// GetMessages sorts on created_at, then _id so that inserts within the same millisecond keep insertion order.
func (r *MessageRepository) GetMessages(ctx context.Context) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := r.messages.FindAll(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(docs))
	for _, doc := range docs {
		id, err := uuid.Parse(doc.MessageID)
		if err != nil {
			return nil, fmt.Errorf("invalid message id %q: %w", doc.MessageID, err)
		}
		messages = append(messages, domain.Message{
			ID:        id,
			From:      doc.From,
			To:        doc.To,
			Text:      doc.Text,
			Type:      domain.MessageType(doc.Type),
			Time:      doc.Time,
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return messages, nil
}
