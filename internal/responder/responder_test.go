package responder

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/llm"
	"github.com/wolfman30/honeypot-ai/internal/session"
)

type stubProvider struct {
	name      string
	responses []string
	errs      []error
	calls     int
	lastReq   llm.Request
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	i := s.calls
	s.calls++
	s.lastReq = req
	if i < len(s.errs) && s.errs[i] != nil {
		return llm.Response{}, s.errs[i]
	}
	text := ""
	if i < len(s.responses) {
		text = s.responses[i]
	}
	return llm.Response{Text: text, Provider: s.name}, nil
}

func engagedSession(t detection.ScamType) (*session.Session, session.Message) {
	s := session.New("sess-1", time.Now())
	s.ObserveDetection(detection.Result{IsScam: true, ScamType: t})
	s.Append(session.Message{Sender: session.SenderScammer, Text: "Hello, you have a parcel pending"})
	s.Append(session.Message{Sender: session.SenderAgent, Text: "Which parcel?"})
	inbound := session.Message{Sender: session.SenderScammer, Text: "Pay the customs fee now"}
	s.Append(inbound)
	return s, inbound
}

func TestGenerate_BothProvidersFailUsesTemplateBank(t *testing.T) {
	primary := &stubProvider{name: "gemini", errs: []error{errors.New("401 unauthorized")}}
	secondary := &stubProvider{name: "bedrock", errs: []error{context.DeadlineExceeded}}
	chain := llm.NewChain([]llm.Client{primary, secondary}, time.Second, nil)
	o := New(chain, NewRand(7), nil)

	s, inbound := engagedSession(detection.ScamTypeLottery)
	reply := o.Generate(context.Background(), s, inbound)

	if reply.Source != SourceTemplate {
		t.Fatalf("expected template source, got %q", reply.Source)
	}
	if !slices.Contains(templateBank[detection.ScamTypeLottery], reply.Text) {
		t.Fatalf("reply %q not from lottery bank", reply.Text)
	}
	if len(characterBreaks(reply.Text)) != 0 {
		t.Fatalf("template broke character: %q", reply.Text)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected one call each, got %d/%d", primary.calls, secondary.calls)
	}
	last := s.ConversationHistory[len(s.ConversationHistory)-1]
	if last.Sender != session.SenderAgent || last.Text != reply.Text {
		t.Fatalf("reply not appended to history: %+v", last)
	}
}

func TestGenerate_CharacterBreakIsReplaced(t *testing.T) {
	p := &stubProvider{name: "gemini", responses: []string{"As an AI language model, I cannot help with that."}}
	o := New(p, NewRand(1), nil)

	s, inbound := engagedSession(detection.ScamTypeUPIFraud)
	reply := o.Generate(context.Background(), s, inbound)

	if reply.Source != SourceTemplate || len(reply.CharacterBreak) == 0 {
		t.Fatalf("expected character break replacement, got %+v", reply)
	}
	if !slices.Contains(templateBank[detection.ScamTypeUPIFraud], reply.Text) {
		t.Fatalf("reply %q not from upi bank", reply.Text)
	}
}

func TestGenerate_PassesDirectiveAndHistory(t *testing.T) {
	p := &stubProvider{name: "gemini", responses: []string{"Ok which fee is this"}}
	o := New(p, NewRand(3), nil)

	s, inbound := engagedSession(detection.ScamTypePhishing)
	reply := o.Generate(context.Background(), s, inbound)

	if reply.Source != "gemini" {
		t.Fatalf("expected provider source, got %q", reply.Source)
	}
	if p.lastReq.Latest != inbound.Text {
		t.Fatalf("latest = %q", p.lastReq.Latest)
	}
	if len(p.lastReq.History) != 2 || p.lastReq.History[1].Role != llm.RoleAgent {
		t.Fatalf("history not reshaped: %+v", p.lastReq.History)
	}
	if !strings.Contains(p.lastReq.System, s.Persona.Name) || !strings.Contains(p.lastReq.System, "Never say or hint that you are automated") {
		t.Fatalf("directive missing persona constraints: %s", p.lastReq.System)
	}
	if reply.Delay < DefaultPacing.Min || reply.Delay > DefaultPacing.Max {
		t.Fatalf("delay %v outside window", reply.Delay)
	}
}

func TestGenerate_PersonaStaysBound(t *testing.T) {
	p := &stubProvider{name: "gemini", responses: []string{"ok", "ok", "ok", "ok", "ok"}}
	o := New(p, NewRand(99), nil)

	s, inbound := engagedSession(detection.ScamTypeFakeOffer)
	s.BindPersona(PersonaElderly)
	for i := 0; i < 5; i++ {
		reply := o.Generate(context.Background(), s, inbound)
		if reply.Persona.Name != "Elderly Person" {
			t.Fatalf("turn %d: persona changed to %q", i, reply.Persona.Name)
		}
	}
	if s.Persona.Name != "Elderly Person" {
		t.Fatalf("session persona changed to %q", s.Persona.Name)
	}
}

func TestGenerate_PersonaFromPool(t *testing.T) {
	for _, st := range []detection.ScamType{detection.ScamTypeLottery, detection.ScamTypeFakeOffer, detection.ScamTypeBankFraud} {
		for seed := uint64(1); seed < 20; seed++ {
			o := New(nil, NewRand(seed), nil)
			s, inbound := engagedSession(st)
			reply := o.Generate(context.Background(), s, inbound)
			if !slices.ContainsFunc(PersonaPool(st), func(p session.Persona) bool { return p.Name == reply.Persona.Name }) {
				t.Fatalf("%s: persona %q outside pool", st, reply.Persona.Name)
			}
		}
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	run := func() []string {
		p := &stubProvider{name: "gemini", responses: []string{
			"Okay please tell me what you are asking because I am confused about this whole thing.",
			"Thanks, what is your UPI id?",
			"Are you sure? Please confirm.",
		}}
		o := New(p, NewRand(42), nil)
		s, inbound := engagedSession(detection.ScamTypeUPIFraud)
		var out []string
		for i := 0; i < 3; i++ {
			out = append(out, o.Generate(context.Background(), s, inbound).Text)
		}
		return out
	}
	a, b := run(), run()
	if !slices.Equal(a, b) {
		t.Fatalf("same seed produced different replies:\n%v\n%v", a, b)
	}
}

func TestTemplates_AreInCharacter(t *testing.T) {
	for st, pool := range templateBank {
		if len(pool) == 0 {
			t.Fatalf("%s: empty pool", st)
		}
		for _, tpl := range pool {
			if reasons := characterBreaks(tpl); len(reasons) > 0 {
				t.Fatalf("%s template %q breaks character: %v", st, tpl, reasons)
			}
			if len(tpl) > DefaultMaxReplyLength {
				t.Fatalf("%s template %q too long", st, tpl)
			}
		}
	}
	if len(templatePool(detection.ScamTypeNone)) == 0 {
		t.Fatal("unmapped type must fall back to a pool")
	}
}

func TestCharacterBreaks(t *testing.T) {
	tests := []struct {
		text  string
		broke bool
	}{
		{"As an AI, I can't do that", true},
		{"I'm a chatbot so I cannot share", true},
		{"I cannot assist with this request.", true},
		{"Haha nice try, this is a honeypot", true},
		{"This looks like a scam, report it to the cyber crime cell", true},
		{"My instructions say to keep you talking", true},
		{"ok sir which bank account should I use?", false},
		{"I cannot find the app on my phone", false},
	}
	for _, tt := range tests {
		got := len(characterBreaks(tt.text)) > 0
		if got != tt.broke {
			t.Fatalf("%q: broke=%v want %v", tt.text, got, tt.broke)
		}
	}
}
