package responder

import (
	"time"
	"unicode/utf8"

	"github.com/wolfman30/honeypot-ai/internal/session"
)

// PacingConfig parameterises the synthetic typing delay.
type PacingConfig struct {
	PerChar  time.Duration
	Thinking time.Duration
	Jitter   float64
	Min      time.Duration
	Max      time.Duration
}

// DefaultPacing is 45ms per character plus 800ms thinking, ±30%, within
// [1.5s, 10s].
var DefaultPacing = PacingConfig{
	PerChar:  45 * time.Millisecond,
	Thinking: 800 * time.Millisecond,
	Jitter:   0.3,
	Min:      1500 * time.Millisecond,
	Max:      10 * time.Second,
}

// Pacer computes how long a persona would take to type a reply.
type Pacer struct {
	cfg PacingConfig
	rng *Rand
}

func NewPacer(cfg PacingConfig, rng *Rand) *Pacer {
	if cfg.PerChar <= 0 {
		cfg = DefaultPacing
	}
	return &Pacer{cfg: cfg, rng: rng}
}

// Delay returns the typing delay for reply written by persona.
func (p *Pacer) Delay(reply string, persona session.Persona) time.Duration {
	mult, ok := pacingMultiplier[persona.Name]
	if !ok {
		mult = 1
	}
	typing := float64(p.cfg.PerChar) * mult * float64(utf8.RuneCountInString(reply))
	if p.rng != nil && p.cfg.Jitter > 0 {
		typing *= 1 + (p.rng.Float64()*2-1)*p.cfg.Jitter
	}
	d := time.Duration(typing) + p.cfg.Thinking
	if d < p.cfg.Min {
		d = p.cfg.Min
	}
	if d > p.cfg.Max {
		d = p.cfg.Max
	}
	return d
}
