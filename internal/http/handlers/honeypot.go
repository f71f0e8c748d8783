package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/honeypot-ai/internal/engagement"
	"github.com/wolfman30/honeypot-ai/internal/evidence"
	"github.com/wolfman30/honeypot-ai/internal/intel"
	"github.com/wolfman30/honeypot-ai/internal/session"
	"github.com/wolfman30/honeypot-ai/pkg/logging"
)

// Engagement is the slice of the controller the HTTP layer needs.
type Engagement interface {
	Handle(ctx context.Context, sessionID string, msg session.Message, prior []session.Message) (engagement.Result, error)
	Session(ctx context.Context, id string) (*session.Session, error)
	Evidence(ctx context.Context) ([]evidence.Record, error)
}

// MessagePayload is one chat message on the wire.
type MessagePayload struct {
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp FlexTime `json:"timestamp"`
}

// Metadata describes where the message came from. It is logged only.
type Metadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// HoneypotRequest is the body of POST /api/honeypot.
type HoneypotRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             MessagePayload   `json:"message"`
	ConversationHistory []MessagePayload `json:"conversationHistory"`
	Metadata            *Metadata        `json:"metadata,omitempty"`
}

type EngagementMetrics struct {
	EngagementDurationSeconds int64 `json:"engagementDurationSeconds"`
	TotalMessagesExchanged    int   `json:"totalMessagesExchanged"`
}

// HoneypotResponse is returned for every accepted message. Reply is omitted
// when nothing should be sent back.
type HoneypotResponse struct {
	Status                string            `json:"status"`
	ScamDetected          bool              `json:"scamDetected"`
	Reply                 *string           `json:"reply,omitempty"`
	EngagementMetrics     EngagementMetrics `json:"engagementMetrics"`
	ExtractedIntelligence intel.Record      `json:"extractedIntelligence"`
	AgentNotes            string            `json:"agentNotes"`
}

// HoneypotHandler serves the inbound message endpoint and debug reads.
type HoneypotHandler struct {
	engagement Engagement
	logger     *logging.Logger
}

func NewHoneypotHandler(e Engagement, logger *logging.Logger) *HoneypotHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HoneypotHandler{engagement: e, logger: logger.WithComponent("honeypot_handler")}
}

// HandleMessage processes one scammer message.
// POST /api/honeypot
func (h *HoneypotHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req HoneypotRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Metadata != nil {
		h.logger.Debug("inbound message",
			"session_id", req.SessionID,
			"channel", req.Metadata.Channel,
			"language", req.Metadata.Language,
		)
	}

	prior := make([]session.Message, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		prior = append(prior, toMessage(m))
	}

	res, err := h.engagement.Handle(r.Context(), req.SessionID, toMessage(req.Message), prior)
	if err != nil {
		var ve *engagement.ValidationError
		if errors.As(err, &ve) {
			jsonError(w, ve.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("engagement failed", "session_id", req.SessionID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, HoneypotResponse{
		Status:       "success",
		ScamDetected: res.ScamDetected,
		Reply:        res.Reply,
		EngagementMetrics: EngagementMetrics{
			EngagementDurationSeconds: res.Metrics.DurationSeconds,
			TotalMessagesExchanged:    res.Metrics.TotalMessages,
		},
		ExtractedIntelligence: res.Intelligence,
		AgentNotes:            res.Notes,
	})
}

// GetSession returns the full session state.
// GET /api/sessions/{sessionID}
func (h *HoneypotHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if id == "" {
		jsonError(w, "missing sessionID", http.StatusBadRequest)
		return
	}
	s, err := h.engagement.Session(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListEvidence returns every evidence record.
// GET /api/evidence
func (h *HoneypotHandler) ListEvidence(w http.ResponseWriter, r *http.Request) {
	records, err := h.engagement.Evidence(r.Context())
	if err != nil {
		h.logger.Error("failed to list evidence", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []evidence.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "evidence": records})
}

// HealthCheck is the liveness probe.
func (h *HoneypotHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// toMessage maps wire senders onto session senders. "user" and blank mean
// the scammer; "assistant" means the agent. Anything else passes through and
// is rejected downstream.
func toMessage(m MessagePayload) session.Message {
	sender := strings.ToLower(strings.TrimSpace(m.Sender))
	switch sender {
	case "", "user", "scammer":
		sender = string(session.SenderScammer)
	case "assistant", "agent", "honeypot":
		sender = string(session.SenderAgent)
	}
	return session.Message{
		Sender:    session.Sender(sender),
		Text:      m.Text,
		Timestamp: m.Timestamp.Time,
	}
}
