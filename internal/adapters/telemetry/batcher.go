// Package telemetry traces build work with OpenTelemetry and forwards the
// resulting span stream to a renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest time a buffered write waits before being flushed.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = zerr.New("log batcher is closed")

// LogBatcher buffers the output of one span and hands it to a sink in chunks.
// A chunk is flushed when the buffer reaches the size limit, when the oldest
// buffered byte is older than the time limit, or on Close.
type LogBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	sink      func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewLogBatcher creates a LogBatcher. Non-positive limits select the defaults.
func NewLogBatcher(sizeLimit int, timeLimit time.Duration, sink func([]byte)) *LogBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &LogBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		sink:      sink,
	}
}

// Write buffers p.
func (b *LogBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errBatcherClosed
	}

	n, _ := b.buffer.Write(p)
	switch {
	case b.buffer.Len() >= b.sizeLimit:
		b.flushLocked()
	case b.timer == nil:
		b.timer = time.AfterFunc(b.timeLimit, b.Flush)
	}
	return n, nil
}

// Flush hands buffered data to the sink.
func (b *LogBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// Close flushes the remaining data. Later writes fail.
func (b *LogBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// flushLocked must be called with mu held. The sink runs under the lock so
// chunks of one span are delivered in order.
func (b *LogBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.buffer.Len() == 0 {
		return
	}

	data := bytes.Clone(b.buffer.Bytes())
	b.buffer.Reset()
	if b.sink != nil {
		b.sink(data)
	}
}
