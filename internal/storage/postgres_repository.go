package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ProposalScanner/internal/domain"
	"ProposalScanner/internal/ports"
)

// PostgresRepository mirrors mentions and wiki records into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ProposalRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveMentions upserts mention rows keyed by their identifying columns.
func (r *PostgresRepository) SaveMentions(ctx context.Context, ms []domain.Mention) error {
	if r.db == nil || len(ms) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("proposal_mentions").
		Columns("proposal_id", "mention_type", "message_id", "archive_year",
			"archive_month", "mentioned_at", "sender", "vote").
		Suffix("ON CONFLICT (proposal_id, mention_type, message_id, archive_year, archive_month) DO NOTHING")

	for _, m := range ms {
		insert = insert.Values(m.ProposalID, string(m.Type), m.MessageID,
			m.ArchiveYear, m.ArchiveMonth, m.Timestamp, m.Sender, m.Vote)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build mentions insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert mentions: %w", err)
	}
	return nil
}

// SaveRecords inserts wiki records, never replacing an already-known
// proposal row: discovery is first-write-wins in the database as well.
func (r *PostgresRepository) SaveRecords(ctx context.Context, records []domain.WikiRecord) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("proposal_registry").
		Columns("proposal_id", "title", "web_url", "content_url", "created_on",
			"created_by", "last_modified_on", "last_modified_by", "state",
			"jira_id", "jira_link", "discussion_url", "vote_url", "release_label").
		Suffix("ON CONFLICT (proposal_id) DO NOTHING")

	for _, rec := range records {
		insert = insert.Values(rec.ProposalID, rec.Title, rec.WebURL, rec.ContentURL,
			rec.CreatedOn, rec.CreatedBy, rec.LastModifiedOn, rec.LastModifiedBy,
			string(rec.State), rec.JiraID, rec.JiraLink, rec.DiscussionURL,
			rec.VoteURL, rec.ReleaseLabel)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build registry insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert registry records: %w", err)
	}
	return nil
}

// KnownProposals returns a map with the IDs that already exist in the
// registry table.
func (r *PostgresRepository) KnownProposals(ctx context.Context, ids []int) (map[int]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[int]bool{}, nil
	}

	query, args, err := r.builder.
		Select("proposal_id").
		From("proposal_registry").
		Where("proposal_id = ANY(?)", pq.Array(ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build known query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query known proposals: %w", err)
	}
	defer rows.Close()

	result := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}
