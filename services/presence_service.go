//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultSweepInterval       = 15500 * time.Millisecond
	DefaultInactivityThreshold = 10500 * time.Millisecond
)

type IPresenceService interface {
	Register(ctx context.Context, name string) error
	Heartbeat(ctx context.Context, name string) error
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	Sweep(ctx context.Context) (domain.SweepReport, error)
}

// PresenceService tracks who is in the room.
// It never wraps several store calls in a transaction: every step is a single document operation.
type PresenceService struct {
	log                 *slog.Logger
	participants        repositories.IParticipantRepository
	messages            repositories.IMessageRepository
	clock               clockwork.Clock
	inactivityThreshold time.Duration
}

func NewPresenceService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	clock clockwork.Clock,
	inactivityThreshold time.Duration,
) *PresenceService {
	return &PresenceService{
		log:                 log,
		participants:        participants,
		messages:            messages,
		clock:               clock,
		inactivityThreshold: inactivityThreshold,
	}
}

// Register adds name to the room and announces it with a status message.
// A taken name fails with errors.ErrParticipantAlreadyExists.
func (s *PresenceService) Register(ctx context.Context, name string) error {
	if err := ValidateRegister(RegisterRequest{Name: name}); err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.participants.InsertParticipant(ctx, domain.NewParticipant(name, now)); err != nil {
		if goerrors.Is(err, errors.ErrParticipantAlreadyExists) {
			return err
		}
		return storeError(err)
	}
	if err := s.messages.StoreMessage(ctx, domain.NewStatusMessage(name, domain.EnteredRoomText, now)); err != nil {
		return storeError(err)
	}

	s.log.Info("Participant entered the room", "participant", name)
	return nil
}

// Heartbeat refreshes the last status of name, or fails with errors.ErrParticipantNotFound.
func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	err := s.participants.UpdateLastStatus(ctx, name, s.clock.Now())
	if err != nil && !goerrors.Is(err, errors.ErrParticipantNotFound) {
		return storeError(err)
	}
	return err
}

func (s *PresenceService) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	participants, err := s.participants.ListParticipants(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return participants, nil
}

// Sweep evicts every participant idle for longer than the inactivity threshold
// and records a departure status message for each of them.
//
// Evictions are independent: a failed one is reported and the sweep moves on to the next participant.
// Each eviction is a delete followed by an insert, with nothing tying them together, so a crash in
// between leaves no departure message. A heartbeat arriving after the listing but before the delete
// is lost and the participant is evicted anyway; one arriving after the delete gets NotFound.
func (s *PresenceService) Sweep(ctx context.Context) (domain.SweepReport, error) {
	participants, err := s.participants.ListParticipants(ctx)
	if err != nil {
		return domain.SweepReport{}, storeError(err)
	}

	now := s.clock.Now()
	var report domain.SweepReport
	for _, participant := range participants {
		if !participant.IsInactive(now, s.inactivityThreshold) {
			continue
		}
		err := s.evict(ctx, participant.Name)
		switch {
		case err == nil:
			report.Evicted = append(report.Evicted, participant.Name)
		case goerrors.Is(err, errors.ErrParticipantNotFound):
			s.log.Debug("Participant already gone", "participant", participant.Name)
		default:
			s.log.Warn("Eviction failed", "participant", participant.Name, "err", err)
			report.Failed = append(report.Failed, participant.Name)
		}
	}
	return report, nil
}

func (s *PresenceService) evict(ctx context.Context, name string) error {
	if err := s.participants.DeleteParticipant(ctx, name); err != nil {
		return err
	}
	departure := domain.NewStatusMessage(name, domain.LeftRoomText, s.clock.Now())
	if err := s.messages.StoreMessage(ctx, departure); err != nil {
		return fmt.Errorf("participant removed without departure message: %w", err)
	}
	s.log.Info("Participant left the room", "participant", name)
	return nil
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
}
