package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	"github.com/angelmondragon/warrantywizard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/metrics"
)

const (
	sessionPrefix      = "session_"
	defaultHistorySize = 10
	outcomeOK          = "ok"
)

// Input is an incoming chat message. History, when present, is the
// client-held conversation and takes precedence over stored turns.
type Input struct {
	Message   string
	SessionID string
	History   []llm.Message
}

// Result is a reply bound to the session it was recorded under.
type Result struct {
	Reply     *Reply
	SessionID string
}

// Service runs chat turns through the configured responder and records them.
type Service struct {
	responder   Responder
	history     HistoryRepository
	historySize int
	metrics     *metrics.ChatMetrics
	logg        *logger.Logger
	newID       func() string
}

// Option customises the service.
type Option func(*Service)

// WithHistorySize caps how many prior turns are sent to the responder.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithMetrics records reply outcomes.
func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Service) { s.logg = logg }
}

// NewService builds the chat service.
func NewService(responder Responder, history HistoryRepository, opts ...Option) (*Service, error) {
	if responder == nil {
		return nil, fmt.Errorf("chat responder required")
	}
	if history == nil {
		return nil, fmt.Errorf("chat history repository required")
	}
	s := &Service{
		responder:   responder,
		history:     history,
		historySize: defaultHistorySize,
		newID:       func() string { return sessionPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat answers one message. A missing session id is generated.
func (s *Service) Chat(ctx context.Context, in Input) (*Result, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, pkgerrors.Field("message", "message is required")
	}
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}

	history, err := s.conversation(ctx, sessionID, in.History)
	if err != nil {
		return nil, err
	}

	reply, err := s.responder.Respond(ctx, Request{Message: message, History: history})
	if err != nil {
		s.metrics.IncReply(s.responder.Name(), string(pkgerrors.CodeInternal))
		return nil, pkgerrors.FromDatabase(err, "answer chat message")
	}

	outcome := outcomeOK
	if reply.ErrorCode != "" {
		outcome = reply.ErrorCode
	}
	s.metrics.IncReply(s.responder.Name(), outcome)

	if err := s.history.Append(ctx,
		models.ChatMessage{SessionID: sessionID, Role: enums.ChatRoleUser, Content: message},
		models.ChatMessage{SessionID: sessionID, Role: enums.ChatRoleAssistant, Content: reply.Text},
	); err != nil {
		// History is best effort.
		if s.logg != nil {
			s.logg.Error(ctx, "chat.history_append_failed", err)
		}
	}

	return &Result{Reply: reply, SessionID: sessionID}, nil
}

// History returns the stored turns of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.Field("session_id", "session_id is required")
	}
	rows, err := s.history.Recent(ctx, sessionID, 0)
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "load chat history")
	}
	return rows, nil
}

// ClearHistory deletes a session's turns and reports how many were removed.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) (int64, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, pkgerrors.Field("session_id", "session_id is required")
	}
	n, err := s.history.Clear(ctx, sessionID)
	if err != nil {
		return 0, pkgerrors.FromDatabase(err, "clear chat history")
	}
	return n, nil
}

func (s *Service) conversation(ctx context.Context, sessionID string, provided []llm.Message) ([]llm.Message, error) {
	if len(provided) > 0 {
		out := make([]llm.Message, 0, len(provided))
		for _, m := range provided {
			role := strings.ToLower(strings.TrimSpace(m.Role))
			if role != llm.RoleUser && role != llm.RoleAssistant {
				continue
			}
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			out = append(out, llm.Message{Role: role, Content: m.Content})
		}
		if len(out) > s.historySize {
			out = out[len(out)-s.historySize:]
		}
		return out, nil
	}

	rows, err := s.history.Recent(ctx, sessionID, s.historySize)
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "load chat history")
	}
	out := make([]llm.Message, 0, len(rows))
	for _, row := range rows {
		if row.Role == enums.ChatRoleSystem {
			continue
		}
		out = append(out, llm.Message{Role: row.Role.String(), Content: row.Content})
	}
	return out, nil
}
