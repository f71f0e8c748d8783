package session

import (
	"testing"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/intel"
)

func TestSession_DetectionBindsOnce(t *testing.T) {
	s := New("s1", time.Now())
	if s.State() != StateFresh {
		t.Fatalf("expected FRESH, got %s", s.State())
	}

	if s.ObserveDetection(detection.Result{IsScam: false, ScamType: detection.ScamTypeNone}) {
		t.Fatal("negative verdict must not transition")
	}
	if !s.ObserveDetection(detection.Result{IsScam: true, ScamType: detection.ScamTypeLottery, Confidence: 0.4}) {
		t.Fatal("first positive verdict must transition")
	}
	if s.ObserveDetection(detection.Result{IsScam: true, ScamType: detection.ScamTypePhishing, Confidence: 0.9}) {
		t.Fatal("second positive verdict must be a no-op")
	}
	if s.ScamType != detection.ScamTypeLottery {
		t.Fatalf("scam type overwritten: %s", s.ScamType)
	}
	if s.Confidence != 0.9 {
		t.Fatalf("expected peak confidence to be kept, got %v", s.Confidence)
	}
	if s.State() != StateEngaged {
		t.Fatalf("expected ENGAGED, got %s", s.State())
	}
}

func TestSession_PositiveVerdictWithoutTypeBindsOther(t *testing.T) {
	s := New("s1", time.Now())
	s.ObserveDetection(detection.Result{IsScam: true, ScamType: detection.ScamTypeNone})
	if s.ScamType != detection.ScamTypeOther {
		t.Fatalf("expected other, got %s", s.ScamType)
	}
}

func TestSession_CompletionIsMonotonic(t *testing.T) {
	s := New("s1", time.Now())
	if !s.Complete(ReasonIntelligence) {
		t.Fatal("first completion should report true")
	}
	if s.Complete(ReasonMaxMessages) {
		t.Fatal("second completion should report false")
	}
	if s.CompletionReason != ReasonIntelligence || s.State() != StateComplete {
		t.Fatalf("unexpected state %s / %s", s.State(), s.CompletionReason)
	}
	if !s.MarkReportSent() || s.MarkReportSent() {
		t.Fatal("report guard must flip exactly once")
	}
}

func TestSession_PersonaIsStable(t *testing.T) {
	s := New("s1", time.Now())
	elderly := Persona{Name: "Elderly Person"}
	s.BindPersona(elderly)
	got := s.BindPersona(Persona{Name: "Interested Buyer"})
	if got.Name != "Elderly Person" || s.Persona.Name != "Elderly Person" {
		t.Fatalf("persona changed to %q", got.Name)
	}
}

func TestSession_AppendCountsInbound(t *testing.T) {
	s := New("s1", time.Now())
	s.Append(Message{Sender: SenderScammer, Text: "hi"})
	s.Append(Message{Sender: SenderAgent, Text: "hello"})
	s.Append(Message{Sender: SenderScammer, Text: "pay"})
	if s.MessageCount != 2 || len(s.ConversationHistory) != 3 {
		t.Fatalf("count=%d history=%d", s.MessageCount, len(s.ConversationHistory))
	}
	turns := Turns(s.ConversationHistory)
	if turns[1].Role != "agent" || turns[2].Text != "pay" {
		t.Fatalf("unexpected turns %+v", turns)
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := New("s1", time.Now())
	s.Append(Message{Sender: SenderScammer, Text: "hi"})
	s.MergeIntelligence(intel.Record{PhoneNumbers: []string{"9876543210"}})
	s.BindPersona(Persona{Name: "Naive Victim", Traits: []string{"trusting"}})

	c := s.Clone()
	c.Append(Message{Sender: SenderScammer, Text: "more"})
	c.Persona.Traits[0] = "changed"
	c.ExtractedIntelligence.PhoneNumbers[0] = "x"

	if len(s.ConversationHistory) != 1 || s.Persona.Traits[0] != "trusting" || s.ExtractedIntelligence.PhoneNumbers[0] != "9876543210" {
		t.Fatal("clone shares state with original")
	}
}

func TestStopPolicy(t *testing.T) {
	p := NewStopPolicy(0)
	if p.MaxMessages != DefaultMaxMessages {
		t.Fatalf("expected default ceiling, got %d", p.MaxMessages)
	}

	s := New("s1", time.Now())
	s.MergeIntelligence(intel.Record{SuspiciousKeywords: []string{"urgent", "otp"}})
	if stop, _ := p.ShouldStop(s); stop {
		t.Fatal("keywords alone must not stop the engagement")
	}

	s.MergeIntelligence(intel.Record{UPIIDs: []string{"winner@paytm"}})
	if stop, reason := p.ShouldStop(s); !stop || reason != ReasonIntelligence {
		t.Fatalf("expected intelligence stop, got %v %q", stop, reason)
	}

	s2 := New("s2", time.Now())
	for i := 0; i < 3; i++ {
		s2.Append(Message{Sender: SenderScammer, Text: "hello"})
	}
	if stop, reason := NewStopPolicy(3).ShouldStop(s2); !stop || reason != ReasonMaxMessages {
		t.Fatalf("expected ceiling stop, got %v %q", stop, reason)
	}
}
