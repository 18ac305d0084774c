package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/Lumen/internal/models"
)

// Ingestor is the consumer-facing surface of the pipeline: submit files,
// read snapshots, discard tasks.
type Ingestor interface {
	Submit(ctx context.Context, files []models.RawFile) []models.FileTask
	Get(id string) (models.FileTask, bool)
	Snapshot() []models.FileTask
	Discard(id string) bool
	Wait()
}

var _ Ingestor = (*DocumentIngestor)(nil)
