package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/honeypot-ai/internal/detection"
)

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps evidence in the honeypot_evidence table.
type PostgresStore struct {
	pool pgQuerier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("evidence: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q pgQuerier) *PostgresStore {
	if q == nil {
		panic("evidence: querier required")
	}
	return &PostgresStore{pool: q}
}

const upsertEvidenceSQL = `
	INSERT INTO honeypot_evidence (
		id, session_id, scam_detected, scam_type, confidence, persona,
		intelligence, history, message_count, total_messages,
		is_complete, completion_reason, report_sent, agent_notes,
		started_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (session_id) DO UPDATE SET
		scam_detected = EXCLUDED.scam_detected,
		scam_type = EXCLUDED.scam_type,
		confidence = EXCLUDED.confidence,
		persona = EXCLUDED.persona,
		intelligence = EXCLUDED.intelligence,
		history = EXCLUDED.history,
		message_count = EXCLUDED.message_count,
		total_messages = EXCLUDED.total_messages,
		is_complete = honeypot_evidence.is_complete OR EXCLUDED.is_complete,
		completion_reason = COALESCE(NULLIF(honeypot_evidence.completion_reason, ''), EXCLUDED.completion_reason),
		report_sent = honeypot_evidence.report_sent OR EXCLUDED.report_sent,
		agent_notes = EXCLUDED.agent_notes,
		updated_at = EXCLUDED.updated_at
`

// Persist upserts rec. Completion flags never move back to false.
func (s *PostgresStore) Persist(ctx context.Context, rec Record) error {
	if rec.SessionID == "" {
		return errors.New("evidence: record without session id")
	}
	intelJSON, err := json.Marshal(rec.Intelligence)
	if err != nil {
		return fmt.Errorf("evidence: marshal intelligence: %w", err)
	}
	historyJSON, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("evidence: marshal history: %w", err)
	}
	if rec.ID == "" {
		rec.ID = RecordID(rec.SessionID)
	}
	_, err = s.pool.Exec(ctx, upsertEvidenceSQL,
		rec.ID, rec.SessionID, rec.ScamDetected, string(rec.ScamType), rec.Confidence, rec.Persona,
		intelJSON, historyJSON, rec.MessageCount, rec.TotalMessages,
		rec.IsComplete, rec.CompletionReason, rec.ReportSent, rec.AgentNotes,
		rec.StartedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("evidence: upsert %s: %w", rec.SessionID, err)
	}
	return nil
}

const selectEvidenceSQL = `
	SELECT id, session_id, scam_detected, scam_type, confidence, persona,
		intelligence, history, message_count, total_messages,
		is_complete, completion_reason, report_sent, agent_notes,
		started_at, updated_at
	FROM honeypot_evidence
	ORDER BY started_at, session_id
`

// All returns every stored record, oldest engagement first.
func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, selectEvidenceSQL)
	if err != nil {
		return nil, fmt.Errorf("evidence: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec         Record
			scamType    string
			intelJSON   []byte
			historyJSON []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.ScamDetected, &scamType, &rec.Confidence, &rec.Persona,
			&intelJSON, &historyJSON, &rec.MessageCount, &rec.TotalMessages,
			&rec.IsComplete, &rec.CompletionReason, &rec.ReportSent, &rec.AgentNotes,
			&rec.StartedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("evidence: scan: %w", err)
		}
		rec.ScamType = detectionType(scamType)
		if len(intelJSON) > 0 {
			if err := json.Unmarshal(intelJSON, &rec.Intelligence); err != nil {
				return nil, fmt.Errorf("evidence: decode intelligence for %s: %w", rec.SessionID, err)
			}
		}
		if len(historyJSON) > 0 {
			if err := json.Unmarshal(historyJSON, &rec.History); err != nil {
				return nil, fmt.Errorf("evidence: decode history for %s: %w", rec.SessionID, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("evidence: rows: %w", err)
	}
	return out, nil
}

func detectionType(s string) detection.ScamType {
	if s == "" {
		return ""
	}
	t, _ := detection.ParseScamType(s)
	return t
}
