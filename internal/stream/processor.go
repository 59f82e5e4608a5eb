// Package stream assembles one assistant reply from the host's chunked,
// event-delimited completion stream.
//
// The wire format belongs to a third party and changes without notice, so
// the processor is best-effort: frames it cannot read are skipped, and a
// stream that never yields a conversation id and text produces nil.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"chat-capture/backend/internal/model"
)

const (
	frameDelimiter = "\n\n"
	doneSentinel   = "[DONE]"
	contentPath    = "/message/content/parts/0"
	endTurnPath    = "/message/end_turn"
	readChunkSize  = 4096
)

type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// assembly is the state carried across frames of one stream.
type assembly struct {
	reply     model.Reply
	text      strings.Builder
	capturing bool
	lastPath  string
	lastOp    string
	done      bool
}

// Process reads r until a terminator, an end-of-turn marker or EOF and
// returns the assembled reply, or nil when the stream was not recognised.
func (p *Processor) Process(ctx context.Context, r io.Reader) *model.Reply {
	st := &assembly{}
	var pending string
	buf := make([]byte, readChunkSize)

	for !st.done {
		if ctx.Err() != nil {
			slog.Debug("Stream processing cancelled", "component", "stream", "error", ctx.Err())
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			pending = strings.ReplaceAll(pending+string(buf[:n]), "\r\n", "\n")
			for !st.done {
				idx := strings.Index(pending, frameDelimiter)
				if idx < 0 {
					break
				}
				frame := pending[:idx]
				pending = pending[idx+len(frameDelimiter):]
				st.handleFrame(frame)
			}
		}

		if errors.Is(err, io.EOF) {
			if !st.done && strings.TrimSpace(pending) != "" {
				st.handleFrame(pending)
			}
			break
		}
		if err != nil {
			slog.Warn("Stream read failed, abandoning reply", "component", "stream", "error", err)
			return nil
		}
	}

	return st.result()
}

func (st *assembly) result() *model.Reply {
	if st.reply.ConversationID == "" || st.text.Len() == 0 {
		return nil
	}
	out := st.reply
	out.Content = st.text.String()
	return &out
}

// framePayload joins the data lines of one frame. Other SSE fields
// (event:, id:, comments) are ignored.
func framePayload(frame string) string {
	var parts []string
	for _, line := range strings.Split(frame, "\n") {
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		parts = append(parts, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
	}
	return strings.Join(parts, "\n")
}

func (st *assembly) handleFrame(frame string) {
	payload := strings.TrimSpace(framePayload(frame))
	if payload == "" {
		return
	}
	if payload == doneSentinel {
		st.done = true
		return
	}
	if !gjson.Valid(payload) {
		slog.Debug("Skipping unparseable frame", "component", "stream", "frame", truncate(payload, 120))
		return
	}

	data := gjson.Parse(payload)
	if !data.IsObject() {
		// e.g. the "v1" delta-encoding announcement.
		return
	}

	if st.reply.ConversationID == "" {
		if conv := firstString(data, "conversation_id", "v.conversation_id"); conv != "" {
			st.reply.ConversationID = conv
		}
	}

	if data.Get("type").String() == "message_stream_complete" {
		st.done = true
		return
	}

	if msg := envelope(data); msg.Exists() {
		st.handleEnvelope(msg)
		return
	}

	if data.Get("o").String() == "patch" && data.Get("v").IsArray() {
		for _, op := range data.Get("v").Array() {
			st.apply(op.Get("p").String(), op.Get("o").String(), op.Get("v"))
		}
		return
	}

	if v := data.Get("v"); v.Exists() {
		path, op := st.lastPath, st.lastOp
		if p := data.Get("p"); p.Exists() {
			path = p.String()
		}
		if o := data.Get("o"); o.Exists() {
			op = o.String()
		}
		if op == "" {
			op = "append"
		}
		st.apply(path, op, v)
	}
}

func envelope(data gjson.Result) gjson.Result {
	if msg := data.Get("message"); msg.IsObject() {
		return msg
	}
	if msg := data.Get("v.message"); msg.IsObject() {
		return msg
	}
	return gjson.Result{}
}

func (st *assembly) handleEnvelope(msg gjson.Result) {
	st.lastPath, st.lastOp = "", ""

	role := msg.Get("author.role").String()
	contentType := msg.Get("content.content_type").String()
	if (role != "" && role != string(model.RoleAssistant)) || (contentType != "" && contentType != "text") {
		st.capturing = false
		return
	}

	id := msg.Get("id").String()
	switch {
	case st.reply.ID == "":
		st.reply.ID = id
		st.reply.Model = firstString(msg, "metadata.model_slug", "metadata.default_model_slug")
		st.capturing = true
	case id == st.reply.ID:
		st.capturing = true
	default:
		// A later assistant message in the same stream; keep the first.
		st.capturing = false
		return
	}

	// Envelope frames carry the cumulative text.
	if text := joinParts(msg.Get("content.parts")); text != "" {
		st.text.Reset()
		st.text.WriteString(text)
	}
	if msg.Get("end_turn").Bool() {
		st.done = true
	}
}

func (st *assembly) apply(path, op string, v gjson.Result) {
	st.lastPath, st.lastOp = path, op
	switch path {
	case contentPath:
		if !st.capturing {
			return
		}
		switch op {
		case "append":
			st.text.WriteString(v.String())
		case "replace":
			st.text.Reset()
			st.text.WriteString(v.String())
		}
	case endTurnPath:
		if v.Bool() {
			st.done = true
		}
	}
}

func joinParts(parts gjson.Result) string {
	if !parts.IsArray() {
		return ""
	}
	var sb strings.Builder
	for _, part := range parts.Array() {
		if part.Type == gjson.String {
			sb.WriteString(part.String())
		}
	}
	return sb.String()
}

func firstString(data gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := data.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
