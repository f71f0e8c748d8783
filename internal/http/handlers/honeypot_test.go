package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/engagement"
	"github.com/wolfman30/honeypot-ai/internal/evidence"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/responder"
	"github.com/wolfman30/honeypot-ai/internal/session"
)

type cannedProvider struct{}

func (cannedProvider) Name() string { return "canned" }

func (cannedProvider) Complete(context.Context, llm.Request) (llm.Response, error) {
	return llm.Response{Text: "oh dear, which account is this", Provider: "canned"}, nil
}

func newTestHandler(t *testing.T) (*HoneypotHandler, http.Handler) {
	t.Helper()
	ctrl, err := engagement.NewController(engagement.Deps{
		Registry:  session.NewRegistry(nil),
		Detector:  detection.NewDetector(nil),
		Responder: responder.New(cannedProvider{}, responder.NewRand(7), nil),
	})
	require.NoError(t, err)
	t.Cleanup(ctrl.Wait)

	h := NewHoneypotHandler(ctrl, nil)
	r := chi.NewRouter()
	r.Post("/api/honeypot", h.HandleMessage)
	r.Get("/api/sessions/{sessionID}", h.GetSession)
	r.Get("/api/evidence", h.ListEvidence)
	r.Get("/health", h.HealthCheck)
	return h, r
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/honeypot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleMessage_ScamGetsReply(t *testing.T) {
	_, router := newTestHandler(t)
	rec := post(t, router, `{
		"sessionId": "abc",
		"message": {"sender": "scammer", "text": "Your bank account is blocked, verify immediately", "timestamp": 1770005528731},
		"conversationHistory": [],
		"metadata": {"channel": "SMS", "language": "English", "locale": "IN"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp HoneypotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.True(t, resp.ScamDetected)
	require.NotNil(t, resp.Reply)
	assert.NotEmpty(t, *resp.Reply)
	assert.Equal(t, 2, resp.EngagementMetrics.TotalMessagesExchanged)
	assert.NotNil(t, resp.ExtractedIntelligence.UPIIDs, "empty sets must serialise as arrays")
}

func TestHandleMessage_CompletionOmitsReply(t *testing.T) {
	_, router := newTestHandler(t)
	rec := post(t, router, `{"sessionId":"abc","message":{"sender":"user","text":"You won the lottery! Pay fee to winner@paytm","timestamp":"2025-02-01T10:00:00Z"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	_, hasReply := raw["reply"]
	assert.False(t, hasReply)
	assert.Equal(t, true, raw["scamDetected"])
}

func TestHandleMessage_BadRequests(t *testing.T) {
	_, router := newTestHandler(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"sessionId":`},
		{"missing session", `{"message":{"text":"hi"}}`},
		{"empty text", `{"sessionId":"x","message":{"text":"  "}}`},
		{"agent sender", `{"sessionId":"x","message":{"sender":"assistant","text":"hi"}}`},
		{"bad timestamp", `{"sessionId":"x","message":{"text":"hi","timestamp":"yesterday"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetSessionAndEvidence(t *testing.T) {
	_, router := newTestHandler(t)
	rec := post(t, router, `{"sessionId":"s-9","message":{"text":"Urgent: KYC pending, verify your account now"},
		"conversationHistory":[{"sender":"scammer","text":"Hello sir"},{"sender":"user","text":"Please reply"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s-9", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var s session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "s-9", s.ID)
	assert.Len(t, s.ConversationHistory, 4)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/evidence", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count    int               `json:"count"`
		Evidence []evidence.Record `json:"evidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "s-9", body.Evidence[0].SessionID)
}

type failingEngagement struct{}

func (failingEngagement) Handle(context.Context, string, session.Message, []session.Message) (engagement.Result, error) {
	return engagement.Result{}, engagement.ErrInternal
}

func (failingEngagement) Session(context.Context, string) (*session.Session, error) {
	return nil, errors.New("redis down")
}

func (failingEngagement) Evidence(context.Context) ([]evidence.Record, error) {
	return nil, errors.New("db down")
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	h := NewHoneypotHandler(failingEngagement{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/honeypot", bytes.NewBufferString(`{"sessionId":"a","message":{"text":"hi"}}`))
	h.HandleMessage(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")

	rec = httptest.NewRecorder()
	h.ListEvidence(rec, httptest.NewRequest(http.MethodGet, "/api/evidence", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestFlexTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`1770005528731`, time.UnixMilli(1770005528731).UTC()},
		{`"1770005528731"`, time.UnixMilli(1770005528731).UTC()},
		{`"2025-02-01T10:00:00Z"`, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tt := range tests {
		var ft FlexTime
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ft), tt.in)
		assert.True(t, tt.want.Equal(ft.Time), "%s: got %v", tt.in, ft.Time)
	}

	var ft FlexTime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ft))
}

func TestToMessageSenderMapping(t *testing.T) {
	assert.Equal(t, session.SenderScammer, toMessage(MessagePayload{Sender: "user"}).Sender)
	assert.Equal(t, session.SenderScammer, toMessage(MessagePayload{}).Sender)
	assert.Equal(t, session.SenderAgent, toMessage(MessagePayload{Sender: "Assistant"}).Sender)
	assert.Equal(t, session.Sender("bot"), toMessage(MessagePayload{Sender: "bot"}).Sender)
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestHandler(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
