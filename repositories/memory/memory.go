// Package memory keeps participants and messages in process memory.
// It backs tests and the "memory" store driver; nothing survives a restart.
package memory

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]domain.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{participants: make(map[string]domain.Participant)}
}

var _ repositories.IParticipantRepository = (*ParticipantRepository)(nil)

func (r *ParticipantRepository) FindParticipant(_ context.Context, name string) (domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	participant, ok := r.participants[name]
	if !ok {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	return participant, nil
}

func (r *ParticipantRepository) ListParticipants(_ context.Context) ([]domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	participants := lo.Values(r.participants)
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Name < participants[j].Name
	})
	return participants, nil
}

func (r *ParticipantRepository) InsertParticipant(_ context.Context, participant domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[participant.Name]; ok {
		return errors.ErrParticipantAlreadyExists
	}
	r.participants[participant.Name] = participant
	return nil
}

func (r *ParticipantRepository) UpdateLastStatus(_ context.Context, name string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[name]; !ok {
		return errors.ErrParticipantNotFound
	}
	r.participants[name] = domain.NewParticipant(name, at)
	return nil
}

func (r *ParticipantRepository) DeleteParticipant(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[name]; !ok {
		return errors.ErrParticipantNotFound
	}
	delete(r.participants, name)
	return nil
}

// MessageRepository is an append-only slice; insertion order is the chronological order.
type MessageRepository struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

var _ repositories.IMessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *MessageRepository) GetMessages(_ context.Context) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	messages := make([]domain.Message, len(r.messages))
	copy(messages, r.messages)
	return messages, nil
}
