package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wachat-backend/internal/services"
)

type recordingProcessor struct {
	bodies []string
}

func (p *recordingProcessor) ProcessWebhook(ctx context.Context, body []byte) services.ProcessResult {
	p.bodies = append(p.bodies, string(body))
	return services.ProcessResult{}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRun_MessagesBeforeStatuses(t *testing.T) {
	dir := t.TempDir()
	// Written out of order on purpose; replay must impose its own ordering.
	writeFile(t, dir, "status_1.json", "s1")
	writeFile(t, dir, "message_2.json", "m2")
	writeFile(t, dir, "message_1.json", "m1")

	proc := &recordingProcessor{}
	r := NewReplayer(proc, dir, 0)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, []string{"m1", "m2", "s1"}, proc.bodies)
}

func TestRun_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "message_1.json", "m1")
	writeFile(t, dir, "notes.txt", "not a payload")
	writeFile(t, dir, "other.json", "no partition keyword")

	proc := &recordingProcessor{}
	r := NewReplayer(proc, dir, 0)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, []string{"m1"}, proc.bodies)
}

func TestRun_MissingDirectoryIsNoOp(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReplayer(proc, filepath.Join(t.TempDir(), "does-not-exist"), 0)

	require.NoError(t, r.Run(context.Background()))
	require.Empty(t, proc.bodies)
}

func TestRun_EmptyDirectoryIsNoOp(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReplayer(proc, t.TempDir(), 0)

	require.NoError(t, r.Run(context.Background()))
	require.Empty(t, proc.bodies)
}

func TestRun_CancelledContextStops(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "message_1.json", "m1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &recordingProcessor{}
	r := NewReplayer(proc, dir, 0)

	require.ErrorIs(t, r.Run(ctx), context.Canceled)
	require.Empty(t, proc.bodies)
}
