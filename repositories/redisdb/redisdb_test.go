package redisdb

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	server := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestParticipantRepository(t *testing.T) {
	ctx := context.Background()
	at := time.Now().UTC()

	t.Run("should refuse a duplicate name", func(t *testing.T) {
		req := require.New(t)
		repository := NewParticipantRepository(newTestClient(t))

		req.NoError(repository.InsertParticipant(ctx, domain.NewParticipant("Alice", at)))
		req.ErrorIs(repository.InsertParticipant(ctx, domain.NewParticipant("Alice", at)), errors.ErrParticipantAlreadyExists)
	})

	t.Run("should refresh only existing participants", func(t *testing.T) {
		req := require.New(t)
		repository := NewParticipantRepository(newTestClient(t))
		later := at.Add(2 * time.Second)

		req.NoError(repository.InsertParticipant(ctx, domain.NewParticipant("Alice", at)))
		req.NoError(repository.UpdateLastStatus(ctx, "Alice", later))
		req.ErrorIs(repository.UpdateLastStatus(ctx, "Bob", later), errors.ErrParticipantNotFound)

		participant, err := repository.FindParticipant(ctx, "Alice")
		req.NoError(err)
		req.Equal(later, participant.LastStatus)

		// And the update did not create Bob
		_, err = repository.FindParticipant(ctx, "Bob")
		req.ErrorIs(err, errors.ErrParticipantNotFound)
	})

	t.Run("should list and delete participants", func(t *testing.T) {
		req := require.New(t)
		repository := NewParticipantRepository(newTestClient(t))

		req.NoError(repository.InsertParticipant(ctx, domain.NewParticipant("Carol", at)))
		req.NoError(repository.InsertParticipant(ctx, domain.NewParticipant("Alice", at)))

		participants, err := repository.ListParticipants(ctx)
		req.NoError(err)
		req.Equal([]domain.Participant{domain.NewParticipant("Alice", at), domain.NewParticipant("Carol", at)}, participants)

		req.NoError(repository.DeleteParticipant(ctx, "Carol"))
		req.ErrorIs(repository.DeleteParticipant(ctx, "Carol"), errors.ErrParticipantNotFound)
	})
}

func TestMessageRepository_Keeps_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(newTestClient(t))
	at := time.Now().UTC()

	messages := []domain.Message{
		domain.NewStatusMessage("Alice", domain.EnteredRoomText, at),
		domain.NewMessage("Alice", domain.Everyone, "hi", domain.MessageTypePublic, at.Add(time.Second)),
	}
	for _, message := range messages {
		req.NoError(repository.StoreMessage(ctx, message))
	}

	fetched, err := repository.GetMessages(ctx)
	req.NoError(err)
	req.Equal(messages, fetched)
}
