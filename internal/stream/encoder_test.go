package stream

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Frames(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.WriteDelta("hi \"there\"\n"))
	require.NoError(t, enc.WriteError())
	require.NoError(t, enc.WriteDone())

	assert.Equal(t, "data: \"hi \\\"there\\\"\\n\"\n\ndata: \"[ERROR]\"\n\ndata: [DONE]\n\n", buf.String())
}

func TestEncoder_Flushes(t *testing.T) {
	rec := httptest.NewRecorder()
	enc := NewEncoder(rec)

	require.NoError(t, enc.WriteDelta("x"))

	assert.True(t, rec.Flushed)
}
