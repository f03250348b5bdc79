// Package audit emits the structured event stream consumed by the
// external logging collaborator. Delivery is best effort: emission
// never blocks the caller and events are dropped when the buffer is
// full.
package audit

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event names emitted by the session orchestrator.
const (
	EventAnalysisStarted  = "analysis_started"
	EventAnalysisComplete = "analysis_complete"
	EventAnalysisError    = "analysis_error"
	EventUserMessage      = "user_message"
	EventAIResponse       = "ai_response"
	EventAIError          = "ai_error"
)

// Fields is the event-specific flat payload.
type Fields map[string]any

// Emitter is the audit sink seen by the orchestrator.
type Emitter interface {
	// Emit records one event. It must never block.
	Emit(event string, fields Fields)
}

type record struct {
	event  string
	fields Fields
}

// Logger writes audit events as JSON lines through zerolog. A buffered
// channel decouples emitters from the writer goroutine. The event
// channel is never closed: emitters run on background goroutines that
// may outlive Close, so shutdown is signalled on quit instead.
type Logger struct {
	log     zerolog.Logger
	ch      chan record
	quit    chan struct{}
	done    chan struct{}
	closing sync.Once
}

const bufferSize = 256

// NewLogger creates an audit logger writing to w.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		log:  zerolog.New(w).With().Timestamp().Logger(),
		ch:   make(chan record, bufferSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	defer close(l.done)
	for {
		select {
		case rec := <-l.ch:
			l.write(rec)
		case <-l.quit:
			// Flush whatever was buffered before the close.
			for {
				select {
				case rec := <-l.ch:
					l.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(rec record) {
	ev := l.log.Info().
		Str("event", rec.event).
		Str("event_id", uuid.New().String())
	for k, v := range rec.fields {
		ev = ev.Interface(k, v)
	}
	ev.Send()
}

// Emit implements Emitter. Events are dropped when the buffer is full
// or the logger is closed.
func (l *Logger) Emit(event string, fields Fields) {
	select {
	case <-l.quit:
		return
	default:
	}
	select {
	case l.ch <- record{event: event, fields: fields}:
	default:
	}
}

// Close flushes buffered events and stops the writer.
func (l *Logger) Close() {
	l.closing.Do(func() {
		close(l.quit)
		<-l.done
	})
}

// Nop is an Emitter that discards everything. Used in tests and when
// no audit sink is configured.
type Nop struct{}

func (Nop) Emit(string, Fields) {}
