package intel

import "sort"

// Record is the structured intelligence pulled out of conversation text.
// Every field is a deduplicated set; order carries no meaning and values are
// kept sorted so snapshots are stable.
type Record struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// NewRecord returns a record with all sets initialised to empty.
func NewRecord() Record {
	return Record{
		BankAccounts:       []string{},
		UPIIDs:             []string{},
		PhishingLinks:      []string{},
		PhoneNumbers:       []string{},
		SuspiciousKeywords: []string{},
	}
}

// Merge returns the per-field union of r and other. It is commutative and
// idempotent, so merging the same record twice changes nothing.
func (r Record) Merge(other Record) Record {
	return Record{
		BankAccounts:       union(r.BankAccounts, other.BankAccounts),
		UPIIDs:             union(r.UPIIDs, other.UPIIDs),
		PhishingLinks:      union(r.PhishingLinks, other.PhishingLinks),
		PhoneNumbers:       union(r.PhoneNumbers, other.PhoneNumbers),
		SuspiciousKeywords: union(r.SuspiciousKeywords, other.SuspiciousKeywords),
	}
}

// HasActionable reports whether any hard identifier (bank account, UPI id,
// phone number or suspicious link) is present. Keywords alone do not count.
func (r Record) HasActionable() bool {
	return len(r.BankAccounts) > 0 || len(r.UPIIDs) > 0 || len(r.PhoneNumbers) > 0 || len(r.PhishingLinks) > 0
}

// Empty reports whether no field holds a value.
func (r Record) Empty() bool {
	return !r.HasActionable() && len(r.SuspiciousKeywords) == 0
}

// Contains reports whether r already holds every value of other.
func (r Record) Contains(other Record) bool {
	return subset(other.BankAccounts, r.BankAccounts) &&
		subset(other.UPIIDs, r.UPIIDs) &&
		subset(other.PhishingLinks, r.PhishingLinks) &&
		subset(other.PhoneNumbers, r.PhoneNumbers) &&
		subset(other.SuspiciousKeywords, r.SuspiciousKeywords)
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func subset(small, big []string) bool {
	if len(small) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(big))
	for _, v := range big {
		set[v] = struct{}{}
	}
	for _, v := range small {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
