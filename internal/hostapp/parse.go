// Package hostapp reads and decodes the host application's own
// conversation endpoints. Its payloads are undocumented, so parsing is
// best-effort and anything unexpected is skipped.
package hostapp

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"chat-capture/backend/internal/model"
)

// ErrUnrecognized means the payload does not have the expected shape.
var ErrUnrecognized = errors.New("hostapp: unrecognized payload")

// Conversation is the decoded detail of one conversation.
type Conversation struct {
	ID         string
	Title      string
	CreateTime time.Time
	UpdateTime time.Time
	// Messages are the visible text turns in conversation order.
	Messages []Message
}

type Message struct {
	ID           string
	Role         model.Role
	Content      string
	Model        string
	CreateTime   time.Time
	ThinkingTime *float64
}

func (c *Conversation) ChatInfo() model.ChatInfo {
	return model.ChatInfo{ID: c.ID, Title: c.Title, CreateTime: c.CreateTime, UpdateTime: c.UpdateTime}
}

// ParseConversation decodes a conversation detail payload. The message
// tree is walked from current_node up through parents, which yields the
// branch the user is looking at. Without a usable current_node all
// messages are ordered by creation time.
func ParseConversation(body []byte) (*Conversation, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrUnrecognized
	}
	root := gjson.ParseBytes(body)
	mapping := root.Get("mapping")
	if !mapping.IsObject() {
		return nil, ErrUnrecognized
	}

	conv := &Conversation{
		ID:         firstString(root, "conversation_id", "id"),
		Title:      strings.TrimSpace(root.Get("title").String()),
		CreateTime: parseTime(root.Get("create_time")),
		UpdateTime: parseTime(root.Get("update_time")),
	}
	defaultModel := root.Get("default_model_slug").String()

	nodes := make(map[string]gjson.Result)
	mapping.ForEach(func(key, value gjson.Result) bool {
		nodes[key.String()] = value
		return true
	})

	var thinking *float64
	for _, node := range orderedNodes(nodes, root.Get("current_node").String()) {
		msg := node.Get("message")
		if !msg.IsObject() {
			// synthetic root
			continue
		}
		if msg.Get("metadata.is_visually_hidden_from_conversation").Bool() {
			continue
		}

		contentType := msg.Get("content.content_type").String()
		if contentType == "reasoning_recap" || contentType == "thoughts" {
			if d := msg.Get("metadata.finished_duration_sec"); d.Type == gjson.Number {
				v := d.Float()
				thinking = &v
			}
			continue
		}
		if contentType != "text" {
			continue
		}

		role := model.Role(msg.Get("author.role").String())
		if role != model.RoleUser && role != model.RoleAssistant {
			continue
		}
		content := joinParts(msg.Get("content.parts"))
		if strings.TrimSpace(content) == "" {
			continue
		}

		m := Message{
			ID:         firstString(msg, "id"),
			Role:       role,
			Content:    content,
			CreateTime: parseTime(msg.Get("create_time")),
		}
		if m.ID == "" {
			m.ID = node.Get("id").String()
		}
		if role == model.RoleAssistant {
			m.Model = firstString(msg, "metadata.model_slug")
			if m.Model == "" {
				m.Model = defaultModel
			}
			m.ThinkingTime = thinking
			thinking = nil
		}
		conv.Messages = append(conv.Messages, m)
	}

	return conv, nil
}

func orderedNodes(nodes map[string]gjson.Result, current string) []gjson.Result {
	var chain []gjson.Result
	seen := make(map[string]bool)
	for id := current; id != "" && !seen[id]; {
		node, ok := nodes[id]
		if !ok {
			break
		}
		seen[id] = true
		chain = append(chain, node)
		id = node.Get("parent").String()
	}

	if len(chain) > 0 {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		return chain
	}

	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ti := nodes[keys[i]].Get("message.create_time").Float()
		tj := nodes[keys[j]].Get("message.create_time").Float()
		if ti == tj {
			return keys[i] < keys[j]
		}
		return ti < tj
	})
	for _, k := range keys {
		chain = append(chain, nodes[k])
	}
	return chain
}

// ParseConversationList decodes one page of the conversation list.
// Items without an id are skipped.
func ParseConversationList(body []byte) ([]model.ChatInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrUnrecognized
	}
	items := gjson.GetBytes(body, "items")
	if !items.IsArray() {
		return nil, ErrUnrecognized
	}

	chats := make([]model.ChatInfo, 0, len(items.Array()))
	for _, item := range items.Array() {
		id := item.Get("id").String()
		if id == "" {
			continue
		}
		chats = append(chats, model.ChatInfo{
			ID:         id,
			Title:      strings.TrimSpace(item.Get("title").String()),
			CreateTime: parseTime(item.Get("create_time")),
			UpdateTime: parseTime(item.Get("update_time")),
		})
	}
	return chats, nil
}

// parseTime accepts epoch seconds (possibly fractional) or RFC 3339 text.
func parseTime(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		sec, frac := math.Modf(v.Float())
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	case gjson.String:
		if t, err := time.Parse(time.RFC3339Nano, v.String()); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func joinParts(parts gjson.Result) string {
	if !parts.IsArray() {
		return ""
	}
	var out []string
	for _, p := range parts.Array() {
		if p.Type == gjson.String {
			out = append(out, p.String())
		}
	}
	return strings.Join(out, "\n")
}

func firstString(data gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := data.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
