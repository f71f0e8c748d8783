package responder

import "github.com/wolfman30/honeypot-ai/internal/detection"

// templateBank holds in-character replies used when no provider output is
// usable. Every entry must pass characterBreaks.
var templateBank = map[detection.ScamType][]string{
	detection.ScamTypeLottery: {
		"Really? I won? How do I get the prize money, what do I do first?",
		"Oh wow I never win anything. Where should I send the fee?",
		"This is so exciting! Can you tell me again which account to pay the charges to?",
		"My son says I should ask, which company is giving this prize?",
		"Ok I want to claim it. Do you have a UPI id or should I do bank transfer?",
	},
	detection.ScamTypeUPIFraud: {
		"Which UPI id should I send to? Please type it again, I will copy it.",
		"My PhonePe is asking for the name, what name will come when I pay?",
		"Ok I am opening the app now. Is it the same number for GPay also?",
		"Sorry the payment did not go through, can you give another UPI id?",
		"How much exactly should I send, and to which id?",
	},
	detection.ScamTypeBankFraud: {
		"Oh no, why is my account blocked? What should I do now?",
		"Which bank are you calling from? I have two accounts.",
		"I am scared, please tell me step by step. Should I go to the branch?",
		"The message did not come yet. Can you give me a number to call you back?",
		"Ok, which account number should I transfer to so it gets unblocked?",
	},
	detection.ScamTypePhishing: {
		"The link is not opening on my phone, can you send it again?",
		"I clicked but the page is blank. Is there another website?",
		"What will I have to fill in that page? My details?",
		"My phone is very slow. Can I just pay you directly instead?",
		"Which link was it? I got many messages today.",
	},
	detection.ScamTypeFakeOffer: {
		"That sounds good. How much do I need to pay to start?",
		"Is this offer still available? What are the next steps?",
		"How will I get the money back, through UPI or bank?",
		"Ok I am interested. Who should I pay the registration fee to?",
		"Can you send the details again? I want to show my wife.",
	},
	detection.ScamTypeOther: {
		"Sorry I did not understand. What do I need to do?",
		"Ok, can you explain again slowly?",
		"Who is this? How did you get my number?",
		"Tell me what to do, I will try.",
		"Where should I send it? Give me the details please.",
	},
}

func templatePool(t detection.ScamType) []string {
	if pool, ok := templateBank[t]; ok {
		return pool
	}
	return templateBank[detection.ScamTypeOther]
}

func pickTemplate(rng *Rand, t detection.ScamType) string {
	pool := templatePool(t)
	return pool[rng.IntN(len(pool))]
}
