// Package replay feeds recorded webhook payloads through the ingestion
// pipeline in a deterministic order, used for seeding and testing.
package replay

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wachat-backend/internal/services"
)

// Processor is the pipeline entry point replay drives. It matches the live
// webhook path so replayed payloads take exactly the same route.
type Processor interface {
	ProcessWebhook(ctx context.Context, body []byte) services.ProcessResult
}

// Replayer reads every JSON payload file from a directory and pushes it
// through the pipeline: files named like messages first, then files named like
// statuses, each partition in lexical order, with a fixed delay between
// payloads to preserve a deterministic apparent arrival order.
type Replayer struct {
	processor Processor
	dir       string
	delay     time.Duration
}

func NewReplayer(processor Processor, dir string, delay time.Duration) *Replayer {
	return &Replayer{
		processor: processor,
		dir:       dir,
		delay:     delay,
	}
}

// Run replays all sample payloads. A missing directory or an empty one is not
// an error, only a diagnostic: replay is an optional seeding step.
func (r *Replayer) Run(ctx context.Context) error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[Replayer] Sample data directory %s not found, skipping replay", r.dir)
			return nil
		}
		return err
	}

	var messageFiles, statusFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		switch {
		case strings.Contains(name, "message"):
			messageFiles = append(messageFiles, name)
		case strings.Contains(name, "status"):
			statusFiles = append(statusFiles, name)
		}
	}

	if len(messageFiles) == 0 && len(statusFiles) == 0 {
		log.Printf("[Replayer] No JSON payload files found in %s", r.dir)
		return nil
	}

	sort.Strings(messageFiles)
	sort.Strings(statusFiles)

	// Messages before statuses, so status events have records to reconcile
	// against. The delay is best-effort ordering, not a correctness guarantee.
	for _, name := range append(messageFiles, statusFiles...) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		body, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			log.Printf("ERROR [Replayer] Failed to read %s: %v", name, err)
			continue
		}

		result := r.processor.ProcessWebhook(ctx, body)
		log.Printf("[Replayer] Processed sample file %s: ingested=%d reconciled=%d missed=%d failed=%d",
			name, result.Ingested, result.Reconciled, result.Missed, result.Failed)

		time.Sleep(r.delay)
	}

	return nil
}
