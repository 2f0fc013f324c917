package repositories

import (
	"fmt"
	"strings"

	"github.com/mama165/sdk-go/database"
)

// InspectMapper decodes room keys for the badger debug inspector.
func InspectMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	switch {
	case strings.HasPrefix(key, participantPrefix):
		p, err := UnmarshalParticipant(val)
		if err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "PARTICIPANT"
		row.Detail = fmt.Sprintf("%s last seen %s", p.Name, p.LastStatus.Format("15:04:05.000"))
	case strings.HasPrefix(key, messagePrefix):
		m, err := UnmarshalMessage(val)
		if err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = strings.ToUpper(string(m.Type))
		row.Detail = fmt.Sprintf("[%s] %s -> %s: %s", m.Time, m.From, m.To, m.Text)
	}
	return row
}
