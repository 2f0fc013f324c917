package mongodb

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// participantDocument keeps lastStatus in Unix milliseconds, as the documents written by the first version of the room.
type participantDocument struct {
	Name       string `bson:"name"`
	LastStatus int64  `bson:"lastStatus"`
}

type ParticipantRepository struct {
	participants *Collection[participantDocument]
}

func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{participants: NewCollection[participantDocument](db, ParticipantsCollection)}
}

func (r *ParticipantRepository) FindParticipant(ctx context.Context, name string) (domain.Participant, error) {
	doc, err := r.participants.FindOne(ctx, bson.M{"name": name})
	if err == mongo.ErrNoDocuments {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	return toParticipant(*doc), nil
}

func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	docs, err := r.participants.FindAll(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	participants := make([]domain.Participant, 0, len(docs))
	for _, doc := range docs {
		participants = append(participants, toParticipant(doc))
	}
	return participants, nil
}

// InsertParticipant relies on the unique name index to detect duplicates.
func (r *ParticipantRepository) InsertParticipant(ctx context.Context, participant domain.Participant) error {
	err := r.participants.InsertOne(ctx, participantDocument{
		Name:       participant.Name,
		LastStatus: participant.LastStatus.UnixMilli(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return errors.ErrParticipantAlreadyExists
	}
	return err
}

func (r *ParticipantRepository) UpdateLastStatus(ctx context.Context, name string, at time.Time) error {
	matched, err := r.participants.UpdateOne(ctx, bson.M{"name": name}, bson.M{"lastStatus": at.UnixMilli()})
	if err != nil {
		return err
	}
	if matched == 0 {
		return errors.ErrParticipantNotFound
	}
	return nil
}

func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, name string) error {
	deleted, err := r.participants.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errors.ErrParticipantNotFound
	}
	return nil
}

func toParticipant(doc participantDocument) domain.Participant {
	return domain.NewParticipant(doc.Name, time.UnixMilli(doc.LastStatus).UTC())
}
