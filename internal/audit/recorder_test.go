package audit

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
	block  chan struct{}
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bufferCloser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func TestRecorderWritesJSONLines(t *testing.T) {
	out := &bufferCloser{}
	r := NewRecorder(out, 10)

	require.NoError(t, r.Record(Event{Kind: "calculate", RequestID: "a", Inputs: map[string]float64{"stockPrice": 100}}))
	require.NoError(t, r.Record(Event{Kind: "heatmap", RequestID: "b"}))
	require.NoError(t, r.Close())

	require.True(t, out.closed)
	lines := bytes.Split(bytes.TrimSpace(out.buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.Equal(t, "calculate", first.Kind)
	require.Equal(t, "a", first.RequestID)
	require.False(t, first.Time.IsZero())
}

func TestRecorderDropsWhenFull(t *testing.T) {
	out := &bufferCloser{block: make(chan struct{})}
	r := NewRecorder(out, 1)

	drops := 0
	r.OnDrop = func() { drops++ }

	// the worker takes the first event and blocks on Write; the second fills
	// the buffer
	require.NoError(t, r.Record(Event{Kind: "one"}))
	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = r.Record(Event{Kind: "more"})
	}
	require.ErrorIs(t, err, ErrBufferFull)
	require.GreaterOrEqual(t, drops, 1)

	close(out.block)
	require.NoError(t, r.Close())
}

func TestRecordAfterClose(t *testing.T) {
	r := NewRecorder(&bufferCloser{}, 1)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.ErrorIs(t, r.Record(Event{Kind: "late"}), ErrClosed)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	require.NoError(t, r.Record(Event{Kind: "calculate"}))
	require.NoError(t, r.Close())
}

func TestOpenWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	r := Open(Options{File: path, BufferSize: 4, MaxSizeMB: 1})
	require.NoError(t, r.Record(Event{Kind: "recommend"}))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	require.Contains(t, scanner.Text(), `"kind":"recommend"`)
}
