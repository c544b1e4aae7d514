package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/canada7700/finish-line-calendar-app-sub000/infra/audit"
)

// AuditLog stores the event trail in the audit_log table of a Store.
type AuditLog struct {
	s *Store
}

// AuditLog returns an audit.Store sharing s's connection. Closing it leaves
// s open.
func (s *Store) AuditLog() *AuditLog { return &AuditLog{s: s} }

var _ audit.Store = (*AuditLog)(nil)

func (a *AuditLog) Append(ctx context.Context, rec audit.Record) error {
	_, err := a.s.db.ExecContext(ctx,
		`INSERT INTO audit_log (ts, topic, project_id, event) VALUES (?, ?, ?, ?)`,
		toMillis(rec.Timestamp), rec.Topic, rec.ProjectID, string(rec.Event))
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Query returns matching records ordered by time of writing.
func (a *AuditLog) Query(ctx context.Context, q audit.Query) ([]audit.Record, error) {
	var (
		conds []string
		args  []any
	)
	if !q.Start.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, toMillis(q.Start))
	}
	if !q.End.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, toMillis(q.End))
	}
	if q.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, q.ProjectID)
	}
	if q.Topic != "" {
		conds = append(conds, "topic = ?")
		args = append(args, q.Topic)
	}
	query := `SELECT ts, topic, project_id, event FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts, id"

	rows, err := a.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []audit.Record
	for rows.Next() {
		var (
			ts    int64
			rec   audit.Record
			event string
		)
		if err := rows.Scan(&ts, &rec.Topic, &rec.ProjectID, &event); err != nil {
			return nil, err
		}
		rec.Timestamp = fromMillis(ts)
		rec.Event = []byte(event)
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Close is a no-op; the owning Store holds the connection.
func (a *AuditLog) Close() error { return nil }
