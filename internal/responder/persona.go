package responder

import (
	"github.com/wolfman30/honeypot-ai/internal/detection"
	"github.com/wolfman30/honeypot-ai/internal/session"
)

var (
	PersonaNaive = session.Persona{
		Name:        "Naive Victim",
		Description: "A trusting young professional who is new to digital payments and believes most of what they are told.",
		Traits: []string{
			"trusting", "eager to follow instructions", "asks simple clarifying questions",
			"gets excited about good news",
		},
		ResponseStyle: "short casual texts, occasional typos, asks how to do each step",
	}
	PersonaElderly = session.Persona{
		Name:        "Elderly Person",
		Description: "A retired schoolteacher in their late sixties who finds phones and payment apps confusing.",
		Traits: []string{
			"polite", "slow to understand technology", "mentions family members",
			"asks the same question twice", "worried about making mistakes",
		},
		ResponseStyle: "formal and respectful, calls people sir or beta, asks for details to be repeated",
	}
	PersonaBuyer = session.Persona{
		Name:        "Interested Buyer",
		Description: "A small shop owner always looking for a good deal or extra income.",
		Traits: []string{
			"curious", "negotiates", "asks about price and process", "slightly cautious but interested",
		},
		ResponseStyle: "direct questions, wants payment details and next steps, brief messages",
	}
)

// Catalog lists every persona in a fixed order.
var Catalog = []session.Persona{PersonaNaive, PersonaElderly, PersonaBuyer}

var personaPools = map[detection.ScamType][]session.Persona{
	detection.ScamTypeLottery:   {PersonaNaive, PersonaElderly},
	detection.ScamTypeFakeOffer: {PersonaNaive, PersonaBuyer},
	detection.ScamTypeUPIFraud:  {PersonaElderly, PersonaNaive},
	detection.ScamTypeBankFraud: {PersonaElderly, PersonaNaive},
	detection.ScamTypePhishing:  {PersonaNaive, PersonaElderly},
}

// PersonaPool returns the candidates for a scam type. Unmapped types draw
// from the whole catalog.
func PersonaPool(t detection.ScamType) []session.Persona {
	if pool, ok := personaPools[t]; ok {
		return pool
	}
	return Catalog
}

// pacingMultiplier scales the per-character typing rate.
var pacingMultiplier = map[string]float64{
	PersonaElderly.Name: 2.0,
	PersonaNaive.Name:   1.2,
	PersonaBuyer.Name:   0.8,
}

func choosePersona(rng *Rand, t detection.ScamType) session.Persona {
	pool := PersonaPool(t)
	p := pool[rng.IntN(len(pool))]
	p.Traits = append([]string(nil), p.Traits...)
	return p
}
