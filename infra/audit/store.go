// Package audit keeps an append-only trail of scheduling events so changes
// to a project's plan can be traced after the fact.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
)

// Record is one event as written to the trail.
type Record struct {
	Timestamp time.Time       `json:"timestamp"`
	Topic     string          `json:"topic"`
	ProjectID string          `json:"project_id,omitempty"`
	Event     json.RawMessage `json:"event"`
}

// Query filters records. Zero fields match anything; Start and End are
// inclusive.
type Query struct {
	Start     time.Time
	End       time.Time
	ProjectID string
	Topic     string
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.ProjectID != "" && r.ProjectID != q.ProjectID {
		return false
	}
	return q.Topic == "" || r.Topic == q.Topic
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NewRecord encodes ev with its topic and project.
func NewRecord(ev events.Event, at time.Time) (Record, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", ev.Topic(), err)
	}
	return Record{Timestamp: at.UTC(), Topic: ev.Topic(), ProjectID: projectOf(ev), Event: raw}, nil
}

func projectOf(ev events.Event) string {
	switch e := ev.(type) {
	case events.PhaseScheduled:
		return e.ProjectID
	case events.HourBlocksAssigned:
		return e.ProjectID
	case events.ProjectRescheduled:
		return e.ProjectID
	default:
		return ""
	}
}
