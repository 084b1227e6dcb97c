package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("kcore", "0.0.1", fname))

	_, span := StartSpan(context.Background(), "processor.dispatch", "INTERNAL")
	span.WithAttributes(map[string]string{"image": "init"}).WithInts(map[string]int64{"pid": 1, "tid": 0})
	EndSpan(span, nil)
	_, failed := StartSpan(context.Background(), "syscall.mutex_lock", "SERVER")
	EndSpan(failed, errors.New("would deadlock"))
	require.NoError(t, Shutdown(context.Background()))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "processor.dispatch")
	assert.Contains(t, string(data), "would deadlock")
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	assert.Nil(t, span.WithInts(map[string]int64{"k": 1}))
	span.SetStatus(nil)
	EndSpan(span, nil)
}
