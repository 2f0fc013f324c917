package server

import "chat-room/domain"

const userHeader = "User"

type registerBody struct {
	Name string `json:"name"`
}

type postMessageBody struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// ParticipantDTO carries lastStatus as Unix milliseconds.
type ParticipantDTO struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type MessageDTO struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func toParticipantDTO(p domain.Participant, _ int) ParticipantDTO {
	return ParticipantDTO{Name: p.Name, LastStatus: p.LastStatus.UnixMilli()}
}

func toMessageDTO(m domain.Message, _ int) MessageDTO {
	return MessageDTO{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.Time,
	}
}
