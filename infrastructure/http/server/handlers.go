package server

import (
	"chat-room/errors"
	"chat-room/services"
	goerrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (h *Handler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}
	if err := h.presence.Register(c.Request.Context(), body.Name); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) ListParticipants(c *gin.Context) {
	participants, err := h.presence.ListParticipants(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(participants, toParticipantDTO))
}

func (h *Handler) PostMessage(c *gin.Context) {
	var body postMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}
	err := h.messages.PostMessage(c.Request.Context(), services.PostMessageRequest{
		From: c.GetHeader(userHeader),
		To:   body.To,
		Text: body.Text,
		Type: body.Type,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// GetMessages answers with what the User header may see.
// A limit with no leading number or not positive returns everything.
func (h *Handler) GetMessages(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	messages, err := h.messages.GetMessages(c.Request.Context(), c.GetHeader(userHeader), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(messages, toMessageDTO))
}

func (h *Handler) Heartbeat(c *gin.Context) {
	if err := h.presence.Heartbeat(c.Request.Context(), c.GetHeader(userHeader)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Health reports the store as reachable when participants can be listed.
func (h *Handler) Health(c *gin.Context) {
	participants, err := h.presence.ListParticipants(c.Request.Context())
	response := gin.H{"status": "ok", "participants": len(participants)}
	status := http.StatusOK
	if err != nil {
		h.log.Error("Health check failed", "err", err)
		response = gin.H{"status": "store unavailable"}
		status = http.StatusServiceUnavailable
	}
	if h.monitor != nil {
		response["sweeps"] = h.monitor.Sweeps()
		response["process"] = h.monitor.Process()
	}
	c.JSON(status, response)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrInvalidPayload),
		goerrors.Is(err, errors.ErrInvalidMessageType),
		goerrors.Is(err, errors.ErrUnknownSender):
		return http.StatusUnprocessableEntity
	case goerrors.Is(err, errors.ErrParticipantAlreadyExists):
		return http.StatusConflict
	case goerrors.Is(err, errors.ErrParticipantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseLimit reads the integer prefix of raw, so "2abc" is 2 and "3.5" is 3.
// Leading spaces and one sign are accepted. Without digits, or past the int range, the limit is 0.
func parseLimit(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	limit, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return limit
}
