package server

import (
	"bytes"
	"chat-room/domain"
	"chat-room/mocks"
	"chat-room/observability"
	"chat-room/repositories/memory"
	"chat-room/services"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var start = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type testRoom struct {
	router   *gin.Engine
	presence *services.PresenceService
	clock    clockwork.FakeClock
}

func newTestRoom(t *testing.T) testRoom {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	participants := memory.NewParticipantRepository()
	messages := memory.NewMessageRepository()
	clock := clockwork.NewFakeClockAt(start)
	presence := services.NewPresenceService(log, participants, messages, clock, services.DefaultInactivityThreshold)
	messageService := services.NewMessageService(log, participants, messages, clock)
	monitor := observability.NewMonitoringManager(log, clock.Now)
	handler := NewHandler(log, presence, messageService, monitor)
	return testRoom{router: NewRouter(log, handler, []string{"*"}), presence: presence, clock: clock}
}

func (r testRoom) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&payload).Encode(body)
	}
	request := httptest.NewRequest(method, path, &payload)
	request.Header.Set("Content-Type", "application/json")
	if user != "" {
		request.Header.Set(userHeader, user)
	}
	recorder := httptest.NewRecorder()
	r.router.ServeHTTP(recorder, request)
	return recorder
}

func (r testRoom) messagesFor(t *testing.T, user, query string) []MessageDTO {
	t.Helper()
	recorder := r.do(http.MethodGet, "/messages"+query, user, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var messages []MessageDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &messages))
	return messages
}

func messageTexts(messages []MessageDTO) []string {
	return lo.Map(messages, func(m MessageDTO, _ int) string { return m.Text })
}

func TestRouter_RegisterAndList(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)

	// When Alice registers
	recorder := r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"})
	req.Equal(http.StatusCreated, recorder.Code)

	// Then she is listed with a fresh last status in milliseconds
	recorder = r.do(http.MethodGet, "/participants", "", nil)
	req.Equal(http.StatusOK, recorder.Code)
	var participants []ParticipantDTO
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &participants))
	req.Equal([]ParticipantDTO{{Name: "Alice", LastStatus: start.UnixMilli()}}, participants)
}

func TestRouter_Register_Errors(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)

	// A taken name is a conflict
	req.Equal(http.StatusConflict, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)
	// A missing name is an invalid body
	req.Equal(http.StatusUnprocessableEntity, r.do(http.MethodPost, "/participants", "", gin.H{}).Code)
	// So is a body that is not JSON
	request := httptest.NewRequest(http.MethodPost, "/participants", bytes.NewBufferString("name=Alice"))
	recorder := httptest.NewRecorder()
	r.router.ServeHTTP(recorder, request)
	req.Equal(http.StatusUnprocessableEntity, recorder.Code)
}

func TestRouter_EndToEnd(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)

	// Given Alice, Bob and Carol in the room
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": name}).Code)
	}

	// When Alice says hi to everyone and whispers to Bob
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/messages", "Alice",
		gin.H{"to": domain.Everyone, "text": "hi", "type": "message"}).Code)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/messages", "Alice",
		gin.H{"to": "Bob", "text": "secret", "type": "private_message"}).Code)

	// Then Bob sees both
	bob := messageTexts(r.messagesFor(t, "Bob", ""))
	req.Contains(bob, "hi")
	req.Contains(bob, "secret")

	// And Carol only sees the public one
	carol := messageTexts(r.messagesFor(t, "Carol", ""))
	req.Contains(carol, "hi")
	req.NotContains(carol, "secret")
}

func TestRouter_PostMessage_Errors(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)

	tests := []struct {
		description string
		user        string
		body        gin.H
	}{
		{"Should reject an unknown sender", "Mallory", gin.H{"to": domain.Everyone, "text": "hi", "type": "message"}},
		{"Should reject a missing sender", "", gin.H{"to": domain.Everyone, "text": "hi", "type": "message"}},
		{"Should reject a status message", "Alice", gin.H{"to": domain.Everyone, "text": "hi", "type": "status"}},
		{"Should reject an empty text", "Alice", gin.H{"to": domain.Everyone, "text": "", "type": "message"}},
		{"Should reject a missing recipient", "Alice", gin.H{"text": "hi", "type": "message"}},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			recorder := r.do(http.MethodPost, "/messages", tt.user, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		})
	}
}

func TestRouter_GetMessages_Limit(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)
	for _, text := range []string{"m1", "m2", "m3", "m4", "m5"} {
		r.clock.Advance(time.Second)
		req.Equal(http.StatusCreated, r.do(http.MethodPost, "/messages", "Alice",
			gin.H{"to": domain.Everyone, "text": text, "type": "message"}).Code)
	}

	req.Equal([]string{"m4", "m5"}, messageTexts(r.messagesFor(t, "Alice", "?limit=2")))
	req.Len(r.messagesFor(t, "Alice", ""), 6)
	req.Len(r.messagesFor(t, "Alice", "?limit=0"), 6)
	req.Len(r.messagesFor(t, "Alice", "?limit=-3"), 6)
	req.Len(r.messagesFor(t, "Alice", "?limit=abc"), 6)
	req.Equal([]string{"m4", "m5"}, messageTexts(r.messagesFor(t, "Alice", "?limit=2abc")))
	req.Equal([]string{"m3", "m4", "m5"}, messageTexts(r.messagesFor(t, "Alice", "?limit=3.5")))

	messages := r.messagesFor(t, "Alice", "?limit=1")
	req.Equal("09:30:05", messages[0].Time)
	req.Equal("Alice", messages[0].From)
	req.NotEmpty(messages[0].ID)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 0},
		{raw: "2", want: 2},
		{raw: "2abc", want: 2},
		{raw: "3.5", want: 3},
		{raw: "  7", want: 7},
		{raw: "+4", want: 4},
		{raw: "-3", want: -3},
		{raw: "abc", want: 0},
		{raw: "-", want: 0},
		{raw: "99999999999999999999999", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, parseLimit(tt.raw))
		})
	}
}

func TestRouter_Status(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Alice"}).Code)

	// A heartbeat from a participant refreshes them
	r.clock.Advance(3 * time.Second)
	req.Equal(http.StatusOK, r.do(http.MethodPost, "/status", "Alice", nil).Code)

	// An unknown participant is not found
	req.Equal(http.StatusNotFound, r.do(http.MethodPost, "/status", "Bob", nil).Code)
	req.Equal(http.StatusNotFound, r.do(http.MethodPost, "/status", "", nil).Code)
}

func TestRouter_EvictedParticipantIsGone(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)
	req.Equal(http.StatusCreated, r.do(http.MethodPost, "/participants", "", gin.H{"name": "Bob"}).Code)

	// Given Bob silent past the inactivity threshold and a sweep
	r.clock.Advance(11 * time.Second)
	_, err := r.presence.Sweep(t.Context())
	req.NoError(err)

	// Then his heartbeat is refused and his departure is visible to everyone
	req.Equal(http.StatusNotFound, r.do(http.MethodPost, "/status", "Bob", nil).Code)
	messages := r.messagesFor(t, "Carol", "?limit=1")
	req.Equal(MessageDTO{ID: messages[0].ID, From: "Bob", To: domain.Everyone, Text: domain.LeftRoomText, Type: "status", Time: "09:30:11"}, messages[0])
}

func TestRouter_Health(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)

	recorder := r.do(http.MethodGet, "/health", "", nil)

	req.Equal(http.StatusOK, recorder.Code)
	var body map[string]any
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &body))
	req.Equal("ok", body["status"])
	req.Contains(body, "process")
	req.Contains(body, "sweeps")
}

func TestRouter_StoreFailure(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	presence := mocks.NewMockIPresenceService(ctrl)
	messages := mocks.NewMockIMessageService(ctrl)
	r := testRoom{router: NewRouter(log, NewHandler(log, presence, messages, nil), nil)}

	// Given a store that cannot be reached
	presence.EXPECT().ListParticipants(gomock.Any()).Return(nil, goerrors.New("connection refused")).Times(2)
	messages.EXPECT().GetMessages(gomock.Any(), "Alice", 0).Return(nil, goerrors.New("connection refused"))

	// Then requests fail with a generic server error
	recorder := r.do(http.MethodGet, "/participants", "", nil)
	req.Equal(http.StatusInternalServerError, recorder.Code)
	req.JSONEq(`{"error":"internal server error"}`, recorder.Body.String())
	req.Equal(http.StatusInternalServerError, r.do(http.MethodGet, "/messages", "Alice", nil).Code)
	req.Equal(http.StatusServiceUnavailable, r.do(http.MethodGet, "/health", "", nil).Code)
}

func TestRouter_CORSAllowsUserHeader(t *testing.T) {
	req := require.New(t)
	r := newTestRoom(t)

	request := httptest.NewRequest(http.MethodOptions, "/messages", nil)
	request.Header.Set("Origin", "http://localhost:3000")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", userHeader)
	recorder := httptest.NewRecorder()
	r.router.ServeHTTP(recorder, request)

	req.Equal(http.StatusNoContent, recorder.Code)
	req.Equal("*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
