package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{name: "with custom writer", writer: &bytes.Buffer{}},
		{name: "with nil writer", writer: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer)
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestHandleInterrupts_StopCancelsContext(t *testing.T) {
	handler := NewInterruptHandler(&syncBuffer{})
	ctx := handler.HandleInterrupts(context.Background(), "Ingestion")

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	handler.Stop()
	<-ctx.Done()
	assert.False(t, handler.WasInterrupted(), "stopping is not an interrupt")
}

func TestHandleInterrupts_Signal(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)
	ctx := handler.HandleInterrupts(context.Background(), "Ingestion")
	defer handler.Stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled by SIGINT")
	}
	assert.Eventually(t, handler.WasInterrupted, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, strings.Count(output.String(), "Ingestion interrupted!"))
}

func TestShowInterruptMessage(t *testing.T) {
	var output bytes.Buffer
	handler := &InterruptHandler{writer: &output, operation: "Export"}

	handler.showInterruptMessage()

	assert.Contains(t, output.String(), "Export interrupted!")
	assert.Contains(t, output.String(), "No dashboard was produced")
}
