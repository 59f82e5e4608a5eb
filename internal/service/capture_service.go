package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"chat-capture/backend/internal/hostapp"
	"chat-capture/backend/internal/intercept"
	"chat-capture/backend/internal/model"
)

// Routes names the host endpoints the capture service decodes.
type Routes struct {
	StreamPath        string
	ConversationPath  string
	ConversationsPath string
}

// ReplyAssembler decodes a streamed completion into one reply.
type ReplyAssembler interface {
	Process(ctx context.Context, r io.Reader) *model.Reply
}

// CaptureService routes observed host exchanges to the handlers.
type CaptureService struct {
	routes        Routes
	replies       ReplyAssembler
	conversations *ConversationHandler
	messages      MessageSink
	host          hostapp.Reader
	now           func() time.Time
}

func NewCaptureService(routes Routes, replies ReplyAssembler, conversations *ConversationHandler, messages MessageSink, host hostapp.Reader) *CaptureService {
	return &CaptureService{
		routes:        routes,
		replies:       replies,
		conversations: conversations,
		messages:      messages,
		host:          host,
		now:           time.Now,
	}
}

// Register subscribes the service to the observer.
func (s *CaptureService) Register(obs intercept.Observer) {
	obs.OnMatchingExchange(s.matches, s.Handle)
}

func (s *CaptureService) matches(rawURL string) bool {
	return strings.Contains(rawURL, s.routes.StreamPath) || strings.Contains(rawURL, s.routes.ConversationsPath)
}

// Handle decodes one exchange. Every failure is logged and swallowed.
func (s *CaptureService) Handle(ex *intercept.Exchange) {
	if s.host != nil && ex.RequestHeader != nil {
		s.host.RememberCredentials(ex.RequestHeader)
	}
	if ex.Status < 200 || ex.Status >= 300 {
		return
	}

	ctx := context.Background()
	path := ex.Path()
	switch {
	case ex.Method == http.MethodPost && path == s.routes.StreamPath:
		s.handleCompletion(ctx, ex)
	case ex.Method == http.MethodGet && strings.HasPrefix(path, s.routes.ConversationsPath):
		s.handleList(ctx, ex)
	case ex.Method == http.MethodGet && strings.HasPrefix(path, s.routes.ConversationPath):
		id := strings.TrimPrefix(path, s.routes.ConversationPath)
		if id == "" || strings.Contains(id, "/") {
			return
		}
		s.handleDetail(ctx, id, ex)
	}
}

func (s *CaptureService) handleCompletion(ctx context.Context, ex *intercept.Exchange) {
	req, ok := ex.RequestJSON()
	reply := s.replies.Process(ctx, ex.Response)

	convID := ""
	if ok {
		convID = req.Get("conversation_id").String()
	}
	if convID == "" && reply != nil {
		convID = reply.ConversationID
	}

	if ok {
		now := s.now().UTC()
		modelSlug := req.Get("model").String()
		for _, m := range req.Get("messages").Array() {
			if m.Get("author.role").String() != string(model.RoleUser) {
				continue
			}
			content := joinTextParts(m.Get("content.parts"))
			if content == "" {
				continue
			}
			id := m.Get("id").String()
			if id == "" {
				id = uuid.NewString()
			}
			s.process(userEvent(id, content, convID, modelSlug, now))
		}
	}

	if reply == nil {
		slog.Debug("Completion stream not recognised", "component", "capture", "url", ex.URL)
		return
	}
	s.process(model.MessageEvent{
		Type:           model.RoleAssistant,
		MessageID:      reply.ID,
		Content:        reply.Content,
		Timestamp:      s.now().UTC(),
		ConversationID: convID,
		Model:          reply.Model,
	})
}

func userEvent(id, content, convID, modelSlug string, ts time.Time) model.MessageEvent {
	return model.MessageEvent{
		Type:           model.RoleUser,
		MessageID:      id,
		Content:        content,
		Timestamp:      ts,
		ConversationID: convID,
		Model:          modelSlug,
	}
}

func (s *CaptureService) process(ev model.MessageEvent) {
	if ev.MessageID == "" {
		return
	}
	_ = s.messages.ProcessMessage(ev)
}

func (s *CaptureService) handleDetail(ctx context.Context, id string, ex *intercept.Exchange) {
	body, err := ex.ReadResponse()
	if err != nil {
		slog.Debug("Conversation detail body incomplete", "component", "capture", "chat_id", id, "error", err)
		return
	}
	if err := s.conversations.HandleConversationDetail(ctx, id, body); err != nil {
		s.logParseError("conversation detail", err)
	}
}

func (s *CaptureService) handleList(ctx context.Context, ex *intercept.Exchange) {
	body, err := ex.ReadResponse()
	if err != nil {
		slog.Debug("Conversation list body incomplete", "component", "capture", "error", err)
		return
	}
	if err := s.conversations.HandleConversationList(ctx, body); err != nil {
		s.logParseError("conversation list", err)
	}
}

func (s *CaptureService) logParseError(what string, err error) {
	if IsUnrecognized(err) {
		slog.Debug("Skipping unrecognised payload", "component", "capture", "payload", what, "error", err)
		return
	}
	slog.Warn("Could not process payload", "component", "capture", "payload", what, "error", err)
}

func joinTextParts(parts gjson.Result) string {
	var out []string
	for _, p := range parts.Array() {
		if p.Type == gjson.String {
			out = append(out, p.String())
		}
	}
	return strings.Join(out, "\n")
}
