//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	goerrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const participantPrefix = "participant:"

// IParticipantRepository is the "participants" collection of the store.
// Every method is a single document operation; callers never get a transaction spanning two calls.
type IParticipantRepository interface {
	FindParticipant(ctx context.Context, name string) (domain.Participant, error)
	ListParticipants(ctx context.Context) ([]domain.Participant, error)
	InsertParticipant(ctx context.Context, participant domain.Participant) error
	UpdateLastStatus(ctx context.Context, name string, at time.Time) error
	DeleteParticipant(ctx context.Context, name string) error
}

type ParticipantRepository struct {
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) IParticipantRepository {
	return &ParticipantRepository{db: db}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// FindParticipant returns errors.ErrParticipantNotFound when no participant has this name.
func (r ParticipantRepository) FindParticipant(_ context.Context, name string) (domain.Participant, error) {
	var participant domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(name))
		if err == badger.ErrKeyNotFound {
			return errors.ErrParticipantNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			participant, err = UnmarshalParticipant(val)
			return err
		})
	})
	return participant, err
}

// ListParticipants scans the participant prefix; results come back ordered by name.
func (r ParticipantRepository) ListParticipants(_ context.Context) ([]domain.Participant, error) {
	participants := []domain.Participant{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				participant, err := UnmarshalParticipant(val)
				if err != nil {
					return err
				}
				participants = append(participants, participant)
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
	return participants, nil
}

// InsertParticipant persists a new participant.
// The name acts as primary key: an existing entry yields errors.ErrParticipantAlreadyExists.
func (r ParticipantRepository) InsertParticipant(ctx context.Context, participant domain.Participant) error {
	return updateWithRetry(ctx, r.db, func(txn *badger.Txn) error {
		key := participantKey(participant.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrParticipantAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, MarshalParticipant(participant))
	})
}

// UpdateLastStatus overwrites the last status of an existing participant; concurrent updates all land, the last commit wins.
func (r ParticipantRepository) UpdateLastStatus(ctx context.Context, name string, at time.Time) error {
	return updateWithRetry(ctx, r.db, func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.ErrParticipantNotFound
		} else if err != nil {
			return err
		}
		return txn.Set(key, MarshalParticipant(domain.NewParticipant(name, at)))
	})
}

func (r ParticipantRepository) DeleteParticipant(ctx context.Context, name string) error {
	return updateWithRetry(ctx, r.db, func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.ErrParticipantNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// updateWithRetry runs fn in a read-write transaction, starting over while badger reports a conflict.
// Every round commits at least one of the competing transactions, so the loop ends unless ctx is done.
func updateWithRetry(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	for {
		err := db.Update(fn)
		if !goerrors.Is(err, badger.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
}
