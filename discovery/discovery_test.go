package discovery

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDeclaration(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeDeclaration(t, dir, "20-qdrant.yaml", "alias: qdrant\npath: builtin/qdrant\n")
	writeDeclaration(t, dir, "10-minio.yaml", `
alias: minio
path: builtin/minio
config:
  bucket: content
  maxRetries: 3
`)
	writeDeclaration(t, dir, "30-legacy.yml", "alias: legacy\npath: builtin/legacy\n")
	writeDeclaration(t, dir, "README.md", "not a declaration")

	regs, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, regs, 3)

	// File-name order decides batch order.
	assert.Equal(t, "minio", regs[0].Alias)
	assert.Equal(t, "qdrant", regs[1].Alias)
	assert.Equal(t, "legacy", regs[2].Alias)

	assert.Equal(t, "builtin/minio", regs[0].Path)
	assert.Equal(t, "content", regs[0].Config["bucket"])
	assert.Equal(t, 3, regs[0].Config["maxRetries"])
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestScanRejectsIncompleteDeclaration(t *testing.T) {
	dir := t.TempDir()
	writeDeclaration(t, dir, "bad.yaml", "path: builtin/x\n")
	_, err := Scan(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias is required")

	dir = t.TempDir()
	writeDeclaration(t, dir, "bad.yaml", "alias: x\n")
	_, err = Scan(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestWatchInitialEmission(t *testing.T) {
	dir := t.TempDir()
	writeDeclaration(t, dir, "a.yaml", "alias: a\npath: builtin/a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ch, err := Watch(ctx, dir, logger)
	require.NoError(t, err)

	select {
	case regs := <-ch:
		require.Len(t, regs, 1)
		assert.Equal(t, "a", regs[0].Alias)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial emission")
	}
}

func TestWatchPicksUpNewDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeDeclaration(t, dir, "a.yaml", "alias: a\npath: builtin/a\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ch, err := Watch(ctx, dir, logger)
	require.NoError(t, err)
	<-ch // initial state

	writeDeclaration(t, dir, "b.yaml", "alias: b\npath: builtin/b\n")

	select {
	case regs := <-ch:
		require.Len(t, regs, 2)
		assert.Equal(t, "a", regs[0].Alias)
		assert.Equal(t, "b", regs[1].Alias)
	case <-time.After(5 * time.Second):
		t.Fatal("no emission after new declaration")
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ch, err := Watch(ctx, dir, logger)
	require.NoError(t, err)
	<-ch // initial state

	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
