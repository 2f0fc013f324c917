//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	goerrors "errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

type IMessageService interface {
	PostMessage(ctx context.Context, req PostMessageRequest) error
	GetMessages(ctx context.Context, viewer string, limit int) ([]domain.Message, error)
}

type MessageService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	clock        clockwork.Clock
}

func NewMessageService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock clockwork.Clock,
) *MessageService {
	return &MessageService{log: log, participants: participants, messages: messages, clock: clock}
}

// PostMessage appends a message to the log.
// The sender must be a participant at the time of the call, otherwise errors.ErrUnknownSender.
func (s *MessageService) PostMessage(ctx context.Context, req PostMessageRequest) error {
	if err := ValidatePostMessage(req); err != nil {
		return err
	}

	if _, err := s.participants.FindParticipant(ctx, req.From); err != nil {
		if goerrors.Is(err, errors.ErrParticipantNotFound) {
			return errors.ErrUnknownSender
		}
		return storeError(err)
	}

	message := domain.NewMessage(req.From, req.To, req.Text, domain.MessageType(req.Type), s.clock.Now())
	if err := s.messages.StoreMessage(ctx, message); err != nil {
		return storeError(err)
	}
	s.log.Debug("Message stored", "from", message.From, "to", message.To, "type", message.Type)
	return nil
}

// GetMessages returns the messages viewer may read, oldest first, keeping only the last limit when limit > 0.
func (s *MessageService) GetMessages(ctx context.Context, viewer string, limit int) ([]domain.Message, error) {
	messages, err := s.messages.GetMessages(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return domain.VisibleMessages(viewer, messages, limit), nil
}
