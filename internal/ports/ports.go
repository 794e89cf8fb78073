package ports

import (
	"context"
	"time"

	"ProposalScanner/internal/domain"
)

// ProposalRepository persists mentions and wiki records for audit/history
// queries outside the file caches.
type ProposalRepository interface {
	SaveMentions(ctx context.Context, mentions []domain.Mention) error
	SaveRecords(ctx context.Context, records []domain.WikiRecord) error
	KnownProposals(ctx context.Context, ids []int) (map[int]bool, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
