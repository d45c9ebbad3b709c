package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, "export:a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(ctx, "export:a")
	assert.False(t, ok)

	other, ok, _ := l.Acquire(ctx, "export:b")
	assert.True(t, ok)
	other()

	release()
	release()
	again, ok, _ := l.Acquire(ctx, "export:a")
	assert.True(t, ok)
	again()
}
