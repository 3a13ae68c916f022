package session

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/taleweaver/internal/game/history"
)

// Message is one UI-facing transcript entry.
type Message struct {
	ID             string       `json:"id"`
	Role           history.Role `json:"role"`
	Content        string       `json:"content"`
	IsSystem       bool         `json:"isSystem,omitempty"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	ImageIsLoading bool         `json:"imageIsLoading,omitempty"`
}

// AddMessage appends a transcript message and returns its id.
func (s *State) AddMessage(role history.Role, content string, isSystem bool) string {
	m := Message{ID: "msg-" + uuid.NewString(), Role: role, Content: content, IsSystem: isSystem}
	s.Transcript = append(s.Transcript, m)
	return m.ID
}

// Message returns a pointer to the message with the given id.
func (s *State) Message(id string) *Message {
	for i := range s.Transcript {
		if s.Transcript[i].ID == id {
			return &s.Transcript[i]
		}
	}
	return nil
}

// LastMessage returns a pointer to the final transcript message.
func (s *State) LastMessage() *Message {
	if len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// AppendToLastModel appends text to the trailing model message, if any.
func (s *State) AppendToLastModel(text string) {
	if m := s.LastMessage(); m != nil && m.Role == history.Model {
		m.Content += text
	}
}

// ReplaceLastModel replaces the content of the trailing model message, if any.
func (s *State) ReplaceLastModel(text string) {
	if m := s.LastMessage(); m != nil && m.Role == history.Model {
		m.Content = text
	}
}

// DropEmptyPlaceholder removes a trailing model message that has no content
// and no pending image.
//
// Postcondition: Returns true when a message was removed.
func (s *State) DropEmptyPlaceholder() bool {
	m := s.LastMessage()
	if m == nil || m.Role != history.Model || m.Content != "" || m.ImageIsLoading {
		return false
	}
	s.Transcript = s.Transcript[:len(s.Transcript)-1]
	return true
}

// rebuildTranscript derives a transcript from history for saves that predate it.
func rebuildTranscript(turns []history.Turn) []Message {
	out := make([]Message, 0, len(turns))
	for _, t := range turns {
		text := t.Text()
		if t.Role == history.Tool || (t.Role == history.Model && text == "") {
			continue
		}
		out = append(out, Message{
			ID:       "msg-" + t.ID,
			Role:     t.Role,
			Content:  text,
			IsSystem: strings.HasPrefix(text, "[SYSTEM]"),
		})
	}
	return out
}
