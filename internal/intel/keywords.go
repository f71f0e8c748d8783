package intel

import (
	"regexp"
	"sort"
	"strings"
)

// Category groups surfaced keywords by theme.
type Category string

const (
	CategoryUrgency         Category = "urgency"
	CategoryMoney           Category = "money"
	CategoryPrize           Category = "prize"
	CategoryAccountSecurity Category = "account_security"
	CategoryOffer           Category = "offer"
	CategoryBanking         Category = "banking"
)

// Categories lists every keyword category in a fixed order.
var Categories = []Category{
	CategoryUrgency,
	CategoryMoney,
	CategoryPrize,
	CategoryAccountSecurity,
	CategoryOffer,
	CategoryBanking,
}

var keywordSets = map[Category][]string{
	CategoryUrgency: {
		"urgent", "urgently", "immediately", "right now", "asap", "hurry", "expire", "expires",
		"expiring", "last chance", "within 24 hours", "today only", "deadline", "final notice",
		"act now", "quickly", "jaldi", "turant",
	},
	CategoryMoney: {
		"send", "pay", "payment", "transfer", "rs", "inr", "rupees", "money", "amount", "fee",
		"charges", "deposit", "refund", "cashback", "upi", "paytm", "gpay", "phonepe",
		"processing fee", "advance",
	},
	CategoryPrize: {
		"won", "winner", "lottery", "prize", "congratulations", "congrats", "claim", "reward",
		"lucky draw", "jackpot", "gift", "selected",
	},
	CategoryAccountSecurity: {
		"blocked", "suspended", "locked", "deactivated", "otp", "pin", "password", "cvv",
		"verify", "verification", "kyc", "unauthorized", "compromised", "security alert",
	},
	CategoryOffer: {
		"offer", "discount", "free", "limited offer", "job offer", "work from home",
		"investment", "guaranteed returns", "double your money", "loan approved", "scheme",
		"part time",
	},
	CategoryBanking: {
		"bank", "account", "account number", "ifsc", "debit card", "credit card", "atm",
		"net banking", "sbi", "hdfc", "icici", "rbi", "branch", "beneficiary",
	},
}

type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

var keywordMatchers = compileKeywordMatchers()

func compileKeywordMatchers() map[Category][]keywordMatcher {
	out := make(map[Category][]keywordMatcher, len(keywordSets))
	for cat, words := range keywordSets {
		matchers := make([]keywordMatcher, 0, len(words))
		for _, w := range words {
			matchers = append(matchers, keywordMatcher{
				keyword: w,
				re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
			})
		}
		out[cat] = matchers
	}
	return out
}

// matchKeywords scans text case-insensitively and returns matched keywords
// per category. Keywords are lower-case and deduplicated within a category.
func matchKeywords(text string) map[Category][]string {
	found := make(map[Category][]string)
	if strings.TrimSpace(text) == "" {
		return found
	}
	for _, cat := range Categories {
		for _, m := range keywordMatchers[cat] {
			if m.re.MatchString(text) {
				found[cat] = append(found[cat], m.keyword)
			}
		}
		if len(found[cat]) > 1 {
			sort.Strings(found[cat])
		}
	}
	return found
}

// flattenKeywords collapses categorised matches into one deduplicated list.
func flattenKeywords(byCategory map[Category][]string) []string {
	var all []string
	for _, cat := range Categories {
		all = append(all, byCategory[cat]...)
	}
	return union(all, nil)
}
