package repositories

import (
	"chat-room/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Values are stored in protobuf wire format following storage.proto, so any protobuf reader can decode them.
// Timestamps are Unix nanoseconds.

func MarshalParticipant(p domain.Participant) []byte {
	var b []byte
	b = appendString(b, 1, p.Name)
	b = appendInt64(b, 2, p.LastStatus.UnixNano())
	return b
}

func UnmarshalParticipant(b []byte) (domain.Participant, error) {
	var p domain.Participant
	err := consumeFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case 1:
			p.Name = s
		case 2:
			p.LastStatus = time.Unix(0, v).UTC()
		}
	})
	return p, err
}

func MarshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, 1, m.ID.String())
	b = appendString(b, 2, m.From)
	b = appendString(b, 3, m.To)
	b = appendString(b, 4, m.Text)
	b = appendString(b, 5, string(m.Type))
	b = appendString(b, 6, m.Time)
	b = appendInt64(b, 7, m.CreatedAt.UnixNano())
	return b
}

func UnmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	var rawID string
	err := consumeFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case 1:
			rawID = s
		case 2:
			m.From = s
		case 3:
			m.To = s
		case 4:
			m.Text = s
		case 5:
			m.Type = domain.MessageType(s)
		case 6:
			m.Time = s
		case 7:
			m.CreatedAt = time.Unix(0, v).UTC()
		}
	})
	if err != nil {
		return domain.Message{}, err
	}
	if m.ID, err = uuid.Parse(rawID); err != nil {
		return domain.Message{}, fmt.Errorf("invalid message id %q: %w", rawID, err)
	}
	return m, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// consumeFields walks every field of b, handing strings and varints to fn.
// Unknown wire types are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, s string, v int64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, s, 0)
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			fn(num, "", int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
