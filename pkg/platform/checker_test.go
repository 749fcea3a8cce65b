package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselight-labs/leveler/pkg/crypto"
)

func writeBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leveler-bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o700))
	return path
}

func TestCheckMatchesPinnedHash(t *testing.T) {
	hasher := crypto.NewSHA3Hasher()
	path := writeBinary(t, "release build")

	c := NewChecker(hasher.Sum([]byte("release build")), hasher)
	result, err := c.Check(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.IsAuthentic)
	assert.Equal(t, hasher.Sum([]byte("release build")), result.Hash)
}

func TestCheckRejectsMismatchedHash(t *testing.T) {
	hasher := crypto.NewSHA3Hasher()
	path := writeBinary(t, "tampered build")

	c := NewChecker(hasher.Sum([]byte("release build")), hasher)
	result, err := c.Check(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, result.IsAuthentic)
	assert.Contains(t, result.Message, "does not match")
}

func TestCheckSelfReportMode(t *testing.T) {
	hasher := crypto.NewSHA3Hasher()
	path := writeBinary(t, "whatever build")

	c := NewChecker("", hasher)
	result, err := c.Check(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.IsAuthentic)
	assert.Len(t, result.Hash, 128)
}

func TestCheckUnreadableBinary(t *testing.T) {
	c := NewChecker("", crypto.NewSHA3Hasher())
	_, err := c.Check(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestCheckHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker("", crypto.NewSHA3Hasher())
	_, err := c.Check(ctx, writeBinary(t, "x"))
	assert.ErrorIs(t, err, context.Canceled)
}
