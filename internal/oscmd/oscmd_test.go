package oscmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	r := NewRunner(5 * time.Second)
	out, err := r.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestRunInputPipesStdin(t *testing.T) {
	r := NewRunner(5 * time.Second)
	out, err := r.RunInput(context.Background(), []byte("piped\n"), "cat")
	require.NoError(t, err)
	assert.Equal(t, "piped\n", string(out))
}

func TestRunReportsTimeout(t *testing.T) {
	r := NewRunner(100 * time.Millisecond)
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunFoldsStderrIntoError(t *testing.T) {
	r := NewRunner(5 * time.Second)
	_, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "oops"))
}
