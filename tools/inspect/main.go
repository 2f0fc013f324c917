package main

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	viewer := flag.String("as", "", "Only show messages visible to this participant")
	limit := flag.Int("limit", 0, "Keep only the last N messages")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	ctx := context.Background()
	participants, err := repositories.NewParticipantRepository(db).ListParticipants(ctx)
	if err != nil {
		log.Fatal(err)
	}
	messages, err := repositories.NewMessageRepository(db, logs.GetLoggerFromString("ERROR")).GetMessages(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if *viewer != "" || *limit > 0 {
		messages = domain.VisibleMessages(*viewer, messages, *limit)
	}

	color.Green.Printf("Participants (%d)\n", len(participants))
	table := newTable([]string{"Name", "Last status", "Idle"})
	for _, p := range participants {
		table.Append([]string{p.Name, p.LastStatus.Local().Format("15:04:05.000"), time.Since(p.LastStatus).Truncate(time.Millisecond).String()})
	}
	table.Render()

	fmt.Println()
	color.Green.Printf("Messages (%d)\n", len(messages))
	table = newTable([]string{"Time", "Type", "From", "To", "Text"})
	table.AppendBulk(lo.Map(messages, func(m domain.Message, _ int) []string {
		return []string{m.Time, typeLabel(m.Type), m.From, m.To, m.Text}
	}))
	table.Render()
}

func typeLabel(t domain.MessageType) string {
	switch t {
	case domain.MessageTypePrivate:
		return color.Magenta.Sprint(t)
	case domain.MessageTypeStatus:
		return color.Gray.Sprint(t)
	default:
		return string(t)
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		return nil, fmt.Errorf("%w: stop the server so the value log gets truncated, then retry", err)
	}
	return db, err
}
