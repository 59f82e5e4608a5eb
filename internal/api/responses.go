package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chat-capture/backend/internal/batch"
	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/model"
	"chat-capture/backend/internal/service"
)

// Shared DTOs for the control API and helpers for writing consistent
// HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned by commands that have nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}

// NavigationRequest is sent by the page script when the host's URL changes.
// An empty ChatID means the user left any conversation.
type NavigationRequest struct {
	ChatID string `json:"chat_id" validate:"max=200"`
	Title  string `json:"title" validate:"max=500"`
}

// TitleRequest carries the chat title currently shown in the page.
type TitleRequest struct {
	Title string `json:"title" validate:"required,max=500"`
}

// MessagePayload is one turn scraped from the page.
type MessagePayload struct {
	Type           model.Role `json:"type" validate:"required,oneof=user assistant"`
	MessageID      string     `json:"messageId" validate:"required,max=200"`
	Content        string     `json:"content" validate:"required"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	ConversationID string     `json:"conversationId,omitempty" validate:"max=200"`
	Model          string     `json:"model,omitempty" validate:"max=100"`
	ThinkingTime   *float64   `json:"thinkingTime,omitempty" validate:"omitempty,gte=0"`
}

type MessagesRequest struct {
	Messages []MessagePayload `json:"messages" validate:"required,min=1,max=100,dive"`
}

// MessagesResponse reports how many of the submitted turns were taken.
// Turns seen before count as accepted.
type MessagesResponse struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// CaptureStatus is the pipeline overview served by GET /status.
type CaptureStatus struct {
	ChatID     string               `json:"chat_id"`
	Title      string               `json:"title"`
	KnownChats int                  `json:"known_chats"`
	Messages   service.MessageStats `json:"messages"`
	Batch      batch.Stats          `json:"batch"`
}

// Event is one item on the live event stream.
type Event struct {
	Type    string              `json:"type"`
	Message *model.MessageEvent `json:"message,omitempty"`
	Chat    *model.ChatInfo     `json:"chat,omitempty"`
}

type UserMetadataRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Plan     string `json:"plan" validate:"max=50"`
	Locale   string `json:"locale" validate:"max=35"`
	Timezone string `json:"timezone" validate:"max=64"`
}

// respondWithError maps pipeline errors to HTTP status codes. The detailed
// error is logged and a generic message is sent for anything unexpected.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrUnattributed):
		statusCode = http.StatusUnprocessableEntity
		message = "No active conversation to attribute the message to."
	case errors.Is(err, app_errors.ErrAuthentication):
		statusCode = http.StatusBadGateway
		message = "The remote store rejected our credentials."
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "component", "api", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "component", "api", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "component", "api", "error", err)
	}
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return validateRequest(dst)
}

// writeStreamEvent marshals data and writes it as one SSE frame. A returned
// error means the client is gone.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "component", "api", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
