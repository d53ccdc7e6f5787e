package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/enginehost/internal/ir"
)

// EventQuery selects journal events. Zero fields match everything; set
// fields are ANDed together.
type EventQuery struct {
	Instance string
	Engine   string
	Kind     ir.EventKind
	AfterSeq int64 // only events with seq > AfterSeq
	Limit    int   // 0 means no limit
}

const selectEvents = `
		SELECT e.seq, e.instance_id, COALESCE(i.parent_id, ''), i.engine, e.kind, e.detail
		FROM lifecycle_events e
		JOIN instances i ON e.instance_id = i.id`

// compile returns parameterized SQL for q. Values are always bound, never
// interpolated, and every query is ordered by seq.
func (q EventQuery) compile() (string, []any) {
	var where []string
	var params []any

	if q.Instance != "" {
		where = append(where, "e.instance_id = ?")
		params = append(params, q.Instance)
	}
	if q.Engine != "" {
		where = append(where, "i.engine = ?")
		params = append(params, q.Engine)
	}
	if q.Kind != "" {
		where = append(where, "e.kind = ?")
		params = append(params, string(q.Kind))
	}
	if q.AfterSeq > 0 {
		where = append(where, "e.seq > ?")
		params = append(params, q.AfterSeq)
	}

	var sb strings.Builder
	sb.WriteString(selectEvents)
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\n\t\tORDER BY e.seq ASC")
	if q.Limit > 0 {
		sb.WriteString("\n\t\tLIMIT ?")
		params = append(params, q.Limit)
	}
	return sb.String(), params
}

// QueryEvents returns the events matching q in seq order.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) QueryEvents(ctx context.Context, q EventQuery) ([]ir.LifecycleEvent, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("query events: negative limit %d", q.Limit)
	}
	query, params := q.compile()
	return s.queryEvents(ctx, query, params...)
}
