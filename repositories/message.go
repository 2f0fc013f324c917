//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const messagePrefix = "msg:"

// IMessageRepository is the append-only "messages" collection of the store.
type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessages(ctx context.Context) ([]domain.Message, error)
}

const (
	messageSequenceKey       = "msg_seq"
	messageSequenceBandwidth = 100
)

// MessageRepository keys every message by its append position, so reads come back in the order messages were stored
// whatever their CreatedAt.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger

	mu       sync.Mutex
	sequence *badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

var _ IMessageRepository = (*MessageRepository)(nil)

// StoreMessage appends a message under "msg:{position}", the position zero padded to 20 digits.
// Positions come from a badger sequence leased on the first append, which keeps read-only users off the lease.
// Appends are serialized so a message is never visible before one stored ahead of it.
func (m *MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sequence == nil {
		sequence, err := m.db.GetSequence([]byte(messageSequenceKey), messageSequenceBandwidth)
		if err != nil {
			return fmt.Errorf("message sequence: %w", err)
		}
		m.sequence = sequence
	}
	position, err := m.sequence.Next()
	if err != nil {
		return fmt.Errorf("message sequence: %w", err)
	}

	key := fmt.Sprintf("%s%020d", messagePrefix, position)
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), MarshalMessage(message))
	})
}

// Close gives back the unused part of the sequence lease. The database stays open.
func (m *MessageRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sequence == nil {
		return nil
	}
	err := m.sequence.Release()
	m.sequence = nil
	return err
}

// GetMessages returns the whole log, oldest first.
func (m *MessageRepository) GetMessages(_ context.Context) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				message, err := UnmarshalMessage(val)
				if err != nil {
					return fmt.Errorf("decoding %s: %w", item.Key(), err)
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("Messages loaded", "count", len(messages))
	return messages, nil
}
