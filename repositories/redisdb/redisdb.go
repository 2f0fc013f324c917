// Package redisdb stores the room in Redis: participants in one hash keyed by name,
// messages in one list in insertion order. Values use the same protobuf encoding as the badger store.
package redisdb

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	participantsKey = "chat:participants"
	messagesKey     = "chat:messages"
)

// updateIfExists refreshes a hash field only when it is already present, in one round trip.
var updateIfExists = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
	redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// NewClient parses url and checks the server answers.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

type ParticipantRepository struct {
	client *redis.Client
}

func NewParticipantRepository(client *redis.Client) *ParticipantRepository {
	return &ParticipantRepository{client: client}
}

var _ repositories.IParticipantRepository = (*ParticipantRepository)(nil)

func (r *ParticipantRepository) FindParticipant(ctx context.Context, name string) (domain.Participant, error) {
	data, err := r.client.HGet(ctx, participantsKey, name).Bytes()
	if err == redis.Nil {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	return repositories.UnmarshalParticipant(data)
}

func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	entries, err := r.client.HGetAll(ctx, participantsKey).Result()
	if err != nil {
		return nil, err
	}
	participants := make([]domain.Participant, 0, len(entries))
	for name, data := range entries {
		participant, err := repositories.UnmarshalParticipant([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("decoding participant %s: %w", name, err)
		}
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Name < participants[j].Name
	})
	return participants, nil
}

func (r *ParticipantRepository) InsertParticipant(ctx context.Context, participant domain.Participant) error {
	created, err := r.client.HSetNX(ctx, participantsKey, participant.Name, repositories.MarshalParticipant(participant)).Result()
	if err != nil {
		return err
	}
	if !created {
		return errors.ErrParticipantAlreadyExists
	}
	return nil
}

func (r *ParticipantRepository) UpdateLastStatus(ctx context.Context, name string, at time.Time) error {
	data := repositories.MarshalParticipant(domain.NewParticipant(name, at))
	updated, err := updateIfExists.Run(ctx, r.client, []string{participantsKey}, name, data).Int()
	if err != nil {
		return err
	}
	if updated == 0 {
		return errors.ErrParticipantNotFound
	}
	return nil
}

func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, name string) error {
	deleted, err := r.client.HDel(ctx, participantsKey, name).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errors.ErrParticipantNotFound
	}
	return nil
}

type MessageRepository struct {
	client *redis.Client
}

func NewMessageRepository(client *redis.Client) *MessageRepository {
	return &MessageRepository{client: client}
}

var _ repositories.IMessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	return r.client.RPush(ctx, messagesKey, repositories.MarshalMessage(message)).Err()
}

func (r *MessageRepository) GetMessages(ctx context.Context) ([]domain.Message, error) {
	entries, err := r.client.LRange(ctx, messagesKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(entries))
	for _, data := range entries {
		message, err := repositories.UnmarshalMessage([]byte(data))
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
