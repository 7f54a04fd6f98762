package audit

import (
	"errors"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jwaldner/breakingbad/internal/logger"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit recorder closed")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one line of the audit trail.
type Event struct {
	Time           time.Time   `json:"time"`
	Kind           string      `json:"kind"`
	RequestID      string      `json:"requestId,omitempty"`
	Inputs         interface{} `json:"inputs"`
	Output         interface{} `json:"output,omitempty"`
	Error          string      `json:"error,omitempty"`
	DurationMicros int64       `json:"durationMicros"`
}

// Recorder hands events to a single worker goroutine that owns the writer.
// A nil *Recorder is a valid no-op recorder.
type Recorder struct {
	ch   chan Event
	done chan struct{}
	out  io.WriteCloser

	mu     sync.RWMutex
	closed bool

	// OnDrop is called when an event is rejected because the buffer is full.
	OnDrop func()
}

type Options struct {
	File       string
	BufferSize int
	MaxSizeMB  int
	MaxBackups int
}

// Open starts a recorder writing JSON lines to a rotating file.
func Open(opts Options) *Recorder {
	return NewRecorder(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}, opts.BufferSize)
}

func NewRecorder(out io.WriteCloser, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 100
	}
	r := &Recorder{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
		out:  out,
	}
	go r.worker()
	return r
}

// Record queues e without blocking.
func (r *Recorder) Record(e Event) error {
	if r == nil {
		return nil
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}

	select {
	case r.ch <- e:
		return nil
	default:
		if r.OnDrop != nil {
			r.OnDrop()
		}
		return ErrBufferFull
	}
}

// Close stops accepting events, drains the queue and closes the writer.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	<-r.done
	return r.out.Close()
}

// worker processes all audit events in a single goroutine
func (r *Recorder) worker() {
	defer close(r.done)

	enc := json.NewEncoder(r.out)
	for e := range r.ch {
		if err := enc.Encode(e); err != nil {
			logger.Warn.Printf("⚠️ AUDIT: failed to write %s event: %v", e.Kind, err)
		}
	}
}
