package engine

import (
	"sync"

	"github.com/cory-johannsen/taleweaver/internal/game/combat"
	"github.com/cory-johannsen/taleweaver/internal/game/dispatch"
)

// Listener receives the engine's user-facing output. Callbacks run while the
// engine holds its state lock and must not call back into the engine.
type Listener interface {
	// OnNarration receives each streamed text increment.
	OnNarration(text string)
	// OnNotice receives notifications.
	OnNotice(n dispatch.Notice)
	// OnVisual receives transient combat annotations.
	OnVisual(v combat.VisualEffect)
	// OnImage reports a finished illustration. MessageID is empty for a
	// combat background.
	OnImage(messageID, url string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) OnNarration(string)           {}
func (Nop) OnNotice(dispatch.Notice)     {}
func (Nop) OnVisual(combat.VisualEffect) {}
func (Nop) OnImage(string, string)       {}

// EventKind tags an Event.
type EventKind int

const (
	NarrationEvent EventKind = iota
	NoticeEvent
	VisualEvent
	ImageEvent
)

// Event is one listener callback carried over a channel.
type Event struct {
	Kind      EventKind
	Text      string
	Notice    dispatch.Notice
	Visual    combat.VisualEffect
	MessageID string
}

// ChannelListener routes events to a buffered channel. Events are dropped
// when the buffer is full or the listener is closed.
type ChannelListener struct {
	events  chan Event
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewChannelListener creates a ChannelListener with the given buffer size.
//
// Postcondition: bufferSize <= 0 yields a buffer of 64.
func NewChannelListener(bufferSize int) *ChannelListener {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &ChannelListener{events: make(chan Event, bufferSize)}
}

func (l *ChannelListener) push(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.events <- e:
	default:
		l.dropped++
	}
}

func (l *ChannelListener) OnNarration(text string) {
	l.push(Event{Kind: NarrationEvent, Text: text})
}

func (l *ChannelListener) OnNotice(n dispatch.Notice) {
	l.push(Event{Kind: NoticeEvent, Notice: n, Text: n.Text})
}

func (l *ChannelListener) OnVisual(v combat.VisualEffect) {
	l.push(Event{Kind: VisualEvent, Visual: v})
}

func (l *ChannelListener) OnImage(messageID, url string) {
	l.push(Event{Kind: ImageEvent, MessageID: messageID, Text: url})
}

// Events returns the read side of the channel.
func (l *ChannelListener) Events() <-chan Event {
	return l.events
}

// Dropped returns the number of events lost to a full buffer.
func (l *ChannelListener) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes the channel.
//
// Postcondition: later events are discarded.
func (l *ChannelListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.events)
	}
}
