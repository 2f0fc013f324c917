package errors

import "fmt"

var (
	ErrWorkerPanic              = fmt.Errorf("worker panic")
	ErrInvalidPayload           = fmt.Errorf("invalid payload")
	ErrInvalidMessageType       = fmt.Errorf("invalid message type")
	ErrUnknownSender            = fmt.Errorf("sender is not a participant")
	ErrParticipantAlreadyExists = fmt.Errorf("participant already exists")
	ErrParticipantNotFound      = fmt.Errorf("participant not found")
	ErrStoreUnavailable         = fmt.Errorf("store unavailable")
)
