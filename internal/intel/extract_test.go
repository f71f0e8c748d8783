package intel

import (
	"reflect"
	"testing"
)

func TestExtract_LotteryMessage(t *testing.T) {
	text := "Congrats! You won Rs.50000 lottery. Send Rs.500 to claim. UPI: winner@paytm"
	f := Analyze(text)

	if !reflect.DeepEqual(f.Record.UPIIDs, []string{"winner@paytm"}) {
		t.Fatalf("expected winner@paytm, got %v", f.Record.UPIIDs)
	}
	if len(f.Record.PhoneNumbers) != 0 || len(f.Record.BankAccounts) != 0 || len(f.Record.PhishingLinks) != 0 {
		t.Fatalf("unexpected identifiers: %+v", f.Record)
	}
	if f.Score < 70 {
		t.Fatalf("expected composite score >= 70, got %d", f.Score)
	}
	if !f.HasCategory(CategoryPrize) || !f.HasCategory(CategoryMoney) {
		t.Fatalf("expected prize and money categories, got %v", f.Categories)
	}
}

func TestExtract_PhishingMessage(t *testing.T) {
	text := "Your account is blocked! Send OTP to 9876543210 or visit http://bank-verify.xyz"
	f := Analyze(text)

	if !reflect.DeepEqual(f.Record.PhoneNumbers, []string{"9876543210"}) {
		t.Fatalf("expected phone 9876543210, got %v", f.Record.PhoneNumbers)
	}
	if !reflect.DeepEqual(f.Record.PhishingLinks, []string{"http://bank-verify.xyz"}) {
		t.Fatalf("expected suspicious link, got %v", f.Record.PhishingLinks)
	}
	if len(f.Record.BankAccounts) != 0 {
		t.Fatalf("phone number leaked into bank accounts: %v", f.Record.BankAccounts)
	}
	if len(f.Links) != 1 || !containsString(f.Links[0].Reasons, "abuse_tld") {
		t.Fatalf("expected abuse_tld reason, got %+v", f.Links)
	}
}

func TestExtractPhones(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "call 9876543210 now", []string{"9876543210"}},
		{"country code", "call +91 98765 43210", []string{"9876543210"}},
		{"country code no plus", "919876543210", []string{"9876543210"}},
		{"trunk zero", "ring 09876543210", []string{"9876543210"}},
		{"dash separator", "98765-43210", []string{"9876543210"}},
		{"invalid leading digit", "5876543210", nil},
		{"too long", "98765432101", nil},
		{"dedup", "9876543210 or +919876543210", []string{"9876543210"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).PhoneNumbers
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, raw := range []string{"+91-98765-43210", "09876543210", "9876543210", "91 9123456789"} {
		first, ok := NormalizePhone(raw)
		if !ok {
			t.Fatalf("expected %q to normalise", raw)
		}
		second, ok := NormalizePhone(first)
		if !ok || second != first {
			t.Fatalf("normalisation not idempotent for %q: %q -> %q", raw, first, second)
		}
	}
}

func TestExtractAccounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"twelve digits", "a/c 123456789012 ifsc SBIN0001", []string{"123456789012"}},
		{"phone excluded", "9876543210", nil},
		{"prefixed phone excluded", "919876543210", nil},
		{"too short", "12345678", nil},
		{"eighteen digits", "123456789012345678", []string{"123456789012345678"}},
		{"too long", "1234567890123456789", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).BankAccounts
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAccounts_DateFilterWithEightDigitMinimum(t *testing.T) {
	e := New(Options{AccountMinDigits: 8})
	got := e.Extract("dob 15082024 ref 87654321").BankAccounts
	if !reflect.DeepEqual(got, []string{"87654321"}) {
		t.Fatalf("expected only the non-date run, got %v", got)
	}
}

func TestExtractUPIIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"handle", "pay to scammer.01@ybl", []string{"scammer.01@ybl"}},
		{"sentence end", "send to refund@okaxis.", []string{"refund@okaxis"}},
		{"email excluded", "mail john@company.com", nil},
		{"webmail excluded", "write to fraud@gmail", nil},
		{"lower-cased", "Pay WINNER@PayTM", []string{"winner@paytm"}},
		{"url userinfo ignored", "http://paytm.com@evil.tk/login", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text).UPIIDs
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyLinks(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		suspicious bool
		reason     string
	}{
		{"shortener", "https://bit.ly/3xYz", true, "shortener"},
		{"ip literal", "http://192.168.10.4/pay", true, "ip_host"},
		{"lure keyword", "https://example.com/kyc-update", true, "lure_keyword"},
		{"abuse tld", "https://promo.tk", true, "abuse_tld"},
		{"credential injection", "http://sbi.co.in@203.0.113.9/", true, "credential_injection"},
		{"benign", "https://example.com/about", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, ok := classifyLink(tt.url)
			if !ok {
				t.Fatalf("expected %q to parse", tt.url)
			}
			if link.Suspicious() != tt.suspicious {
				t.Fatalf("suspicious = %v, reasons %v", link.Suspicious(), link.Reasons)
			}
			if tt.reason != "" && !containsString(link.Reasons, tt.reason) {
				t.Fatalf("expected reason %q in %v", tt.reason, link.Reasons)
			}
		})
	}
}

func TestExtract_OnlySuspiciousLinksSurface(t *testing.T) {
	f := Analyze("see https://example.com/about and https://bit.ly/abc).")
	if len(f.Links) != 2 {
		t.Fatalf("expected two links, got %+v", f.Links)
	}
	if !reflect.DeepEqual(f.Record.PhishingLinks, []string{"https://bit.ly/abc"}) {
		t.Fatalf("expected only the shortener to surface, got %v", f.Record.PhishingLinks)
	}
}

func TestKeywordsCaseInsensitiveWholeWord(t *testing.T) {
	rec := Extract("URGENT: your KYC is pending. Wonderful day")
	if !containsString(rec.SuspiciousKeywords, "urgent") || !containsString(rec.SuspiciousKeywords, "kyc") {
		t.Fatalf("expected urgent and kyc, got %v", rec.SuspiciousKeywords)
	}
	if containsString(rec.SuspiciousKeywords, "won") {
		t.Fatalf("substring match leaked: %v", rec.SuspiciousKeywords)
	}
}

func TestScamScoreBounds(t *testing.T) {
	if got := ScamScore(""); got != 0 {
		t.Fatalf("expected 0 for empty text, got %d", got)
	}
	heavy := "URGENT!! Your bank account blocked. Verify KYC at http://1.2.3.4/login, pay fee to ab@ybl, call 9876543210, a/c 123456789012, you won a prize lottery reward"
	if got := ScamScore(heavy); got != MaxScore {
		t.Fatalf("expected clamp at %d, got %d", MaxScore, got)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "Pay 1000 to fraud@ybl or 9123456789, link https://bit.ly/x"
	a, b := Extract(text), Extract(text)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("extraction not deterministic: %+v vs %+v", a, b)
	}
}

func TestReExtractionOfValuesIsStable(t *testing.T) {
	rec := Extract("call +91 98765 43210, pay refund@okhdfc, visit https://bit.ly/abc")
	for _, phone := range rec.PhoneNumbers {
		if got := Extract(phone).PhoneNumbers; !reflect.DeepEqual(got, []string{phone}) {
			t.Fatalf("re-extracting %q gave %v", phone, got)
		}
	}
	for _, upi := range rec.UPIIDs {
		if got := Extract(upi).UPIIDs; !reflect.DeepEqual(got, []string{upi}) {
			t.Fatalf("re-extracting %q gave %v", upi, got)
		}
	}
	for _, link := range rec.PhishingLinks {
		if got := Extract(link).PhishingLinks; !reflect.DeepEqual(got, []string{link}) {
			t.Fatalf("re-extracting %q gave %v", link, got)
		}
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
