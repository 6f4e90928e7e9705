package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ai-pack-planner/internal/shared"
)

const timeLayout = "2006-01-02 15:04:05"

// ExecutionMetric records one model call.
type ExecutionMetric struct {
	AgentName        string
	RunID            string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Failed           bool
	Timestamp        time.Time
}

// Store persists metrics to SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves m. A zero Timestamp means now.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics
			(agent_name, run_id, model, prompt_tokens, completion_tokens, latency_ms, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AgentName, m.RunID, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS,
		boolToInt(m.Failed), ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert execution metric: %w", err)
	}
	return nil
}

// RecordMeta records a generator call. Successful calls without token
// counts are skipped.
func (s *Store) RecordMeta(meta shared.AgentMeta) error {
	if !meta.Failed && meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	m := MapUsage(meta.AgentName, meta.Usage, meta.Latency)
	m.RunID = meta.RunID
	m.Failed = meta.Failed
	return s.Record(context.Background(), m)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DailyUsage is the token total for one day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	Failures        int
}

// GetDailyUsage returns per-day totals for the last days days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day,
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COUNT(*),
		       COALESCE(SUM(failed), 0)
		FROM execution_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalExecution, &u.Failures); err != nil {
			return nil, fmt.Errorf("scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// StageUsage is the token total for one pipeline stage.
type StageUsage struct {
	Stage        string
	Calls        int
	Tokens       int
	AvgLatencyMS int64
}

// GetStageUsage groups the last days days by stage, most tokens first.
func (s *Store) GetStageUsage(ctx context.Context, days int) ([]StageUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timeLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_name,
		       COUNT(*),
		       COALESCE(SUM(prompt_tokens + completion_tokens), 0) AS tokens,
		       CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM execution_metrics
		WHERE created_at >= ?
		GROUP BY agent_name
		ORDER BY tokens DESC, agent_name`, since)
	if err != nil {
		return nil, fmt.Errorf("query stage usage: %w", err)
	}
	defer rows.Close()

	var results []StageUsage
	for rows.Next() {
		var u StageUsage
		if err := rows.Scan(&u.Stage, &u.Calls, &u.Tokens, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("scan stage usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup deletes records older than olderThanDays and returns how many
// were removed.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup execution metrics: %w", err)
	}
	return res.RowsAffected()
}

// MapUsage converts a token usage report to an ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
