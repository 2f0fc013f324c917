package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Name string `validate:"required"`
}

// PostMessageRequest carries a message sent by From, the identity supplied by the caller.
type PostMessageRequest struct {
	From string `validate:"required"`
	To   string `validate:"required"`
	Text string `validate:"required"`
	Type string `validate:"required"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

// ValidatePostMessage checks required fields first, then that the type is one participants may send.
func ValidatePostMessage(req PostMessageRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if !domain.MessageType(req.Type).IsPostable() {
		return fmt.Errorf("%w: %q", errors.ErrInvalidMessageType, req.Type)
	}
	return nil
}
