package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/enginehost/internal/ir"
)

// InstanceRecord is one row of the instances table plus the last event
// kind recorded for it.
type InstanceRecord struct {
	ID       string
	ParentID string
	Engine   string
	FirstSeq int64
	LastKind ir.EventKind
}

// Record appends ev to the journal. The instance row is created on the
// instance's first event. Re-recording an existing seq is a no-op.
func (s *Store) Record(ctx context.Context, ev ir.LifecycleEvent) error {
	if ev.InstanceID == "" {
		return fmt.Errorf("record %s event: instance id is required", ev.Kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO instances (id, parent_id, engine, first_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.InstanceID,
		nullString(ev.ParentID),
		ev.Engine,
		ev.Seq,
	)
	if err != nil {
		return fmt.Errorf("record instance %s: %w", ev.InstanceID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lifecycle_events
		(seq, instance_id, kind, detail, runtime_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		ev.Seq,
		ev.InstanceID,
		string(ev.Kind),
		ev.Detail,
		ir.RuntimeVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("record %s event seq=%d: %w", ev.Kind, ev.Seq, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// ReadEvents returns every event in seq order.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ReadEvents(ctx context.Context) ([]ir.LifecycleEvent, error) {
	return s.QueryEvents(ctx, EventQuery{})
}

// ReadInstanceEvents returns the events of one instance in seq order.
func (s *Store) ReadInstanceEvents(ctx context.Context, instanceID string) ([]ir.LifecycleEvent, error) {
	return s.QueryEvents(ctx, EventQuery{Instance: instanceID})
}

// ReadEventsByKind returns events of one kind in seq order.
func (s *Store) ReadEventsByKind(ctx context.Context, kind ir.EventKind) ([]ir.LifecycleEvent, error) {
	return s.QueryEvents(ctx, EventQuery{Kind: kind})
}

// ReadInstances returns every journaled instance ordered by first_seq.
func (s *Store) ReadInstances(ctx context.Context) ([]InstanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, COALESCE(i.parent_id, ''), i.engine, i.first_seq,
		       (SELECT e.kind FROM lifecycle_events e
		        WHERE e.instance_id = i.id
		        ORDER BY e.seq DESC LIMIT 1)
		FROM instances i
		ORDER BY i.first_seq ASC, i.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	records := []InstanceRecord{}
	for rows.Next() {
		var rec InstanceRecord
		var last sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ParentID, &rec.Engine, &rec.FirstSeq, &last); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		rec.LastKind = ir.EventKind(last.String)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return records, nil
}

// MaxSeq returns the highest recorded seq, or 0 for an empty journal.
// Use it with engine.NewClockAt to append to an existing journal.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM lifecycle_events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]ir.LifecycleEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.LifecycleEvent{}
	for rows.Next() {
		var ev ir.LifecycleEvent
		var kind string
		if err := rows.Scan(&ev.Seq, &ev.InstanceID, &ev.ParentID, &ev.Engine, &kind, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = ir.EventKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
