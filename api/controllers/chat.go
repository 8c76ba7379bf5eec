package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/warrantywizard-backend/api/middleware"
	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/api/validators"
	"github.com/angelmondragon/warrantywizard-backend/internal/chat"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

type chatService interface {
	Chat(ctx context.Context, in chat.Input) (*chat.Result, error)
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	ClearHistory(ctx context.Context, sessionID string) (int64, error)
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Message             string     `json:"message" validate:"required,max=4000"`
	SessionID           string     `json:"session_id"`
	ConversationHistory []chatTurn `json:"conversationHistory"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	Data      any    `json:"data,omitempty"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

type chatHistoryResponse struct {
	SessionID string           `json:"session_id"`
	Count     int              `json:"count"`
	Messages  []chatMessageDTO `json:"messages"`
}

// Chat answers a message with the configured responder. The session id may
// come from the body or the X-Session-Id header.
func Chat(svc chatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload chatPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := strings.TrimSpace(payload.SessionID)
		if sessionID == "" {
			sessionID = strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
		}

		history := make([]llm.Message, 0, len(payload.ConversationHistory))
		for _, turn := range payload.ConversationHistory {
			history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
		}

		result, err := svc.Chat(ctx, chat.Input{
			Message:   payload.Message,
			SessionID: sessionID,
			History:   history,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, chatResponse{
			Reply:     result.Reply.Text,
			Data:      result.Reply.Data,
			SessionID: result.SessionID,
			Error:     result.Reply.ErrorCode,
		})
	}
}

func ChatHistory(svc chatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := chi.URLParam(r, "sessionID")

		rows, err := svc.History(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]chatMessageDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, chatMessageDTO{Role: row.Role, Content: row.Content, CreatedAt: row.CreatedAt})
		}
		responses.WriteSuccess(w, chatHistoryResponse{SessionID: sessionID, Count: len(out), Messages: out})
	}
}

func ChatHistoryClear(svc chatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := chi.URLParam(r, "sessionID")

		n, err := svc.ClearHistory(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"session_id": sessionID, "deleted": n})
	}
}
