package intel

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var urlCandidateRE = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"'` + "`" + `]+`)

var shortenerDomains = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"goo.gl":      {},
	"t.co":        {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"cutt.ly":     {},
	"rb.gy":       {},
	"shorturl.at": {},
	"tiny.cc":     {},
	"rebrand.ly":  {},
	"s.id":        {},
}

var abuseTLDs = map[string]struct{}{
	"xyz": {}, "tk": {}, "ml": {}, "ga": {}, "cf": {}, "gq": {}, "top": {}, "club": {},
	"online": {}, "site": {}, "work": {}, "click": {}, "loan": {}, "win": {}, "buzz": {},
	"icu": {}, "live": {}, "rest": {}, "cam": {}, "monster": {},
}

var lureTermRE = regexp.MustCompile(`(?i)(bank|verif|kyc|login|signin|secure|update|account|otp|wallet|refund|reward|claim|prize|lottery|upi|paytm|unlock|suspend)`)

// Link is a URL found in text plus the reasons it was judged suspicious.
type Link struct {
	URL     string   `json:"url"`
	Reasons []string `json:"reasons,omitempty"`
}

// Suspicious reports whether any rule flagged the link.
func (l Link) Suspicious() bool {
	return len(l.Reasons) > 0
}

func extractLinks(text string) []Link {
	seen := make(map[string]struct{})
	var out []Link
	for _, raw := range urlCandidateRE.FindAllString(text, -1) {
		candidate := strings.TrimRight(raw, ".,;:!?)]}'\"")
		if _, dup := seen[candidate]; dup {
			continue
		}
		link, ok := classifyLink(candidate)
		if !ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, link)
	}
	return out
}

// classifyLink parses raw and applies every suspicion rule. It returns false
// when raw is not a well-formed http(s) URL.
func classifyLink(raw string) (Link, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Link{}, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Link{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Link{}, false
	}

	link := Link{URL: raw}
	if _, ok := shortenerDomains[strings.TrimPrefix(host, "www.")]; ok {
		link.Reasons = append(link.Reasons, "shortener")
	}
	if net.ParseIP(host) != nil {
		link.Reasons = append(link.Reasons, "ip_host")
	}
	if lureTermRE.MatchString(host) || lureTermRE.MatchString(u.EscapedPath()) {
		link.Reasons = append(link.Reasons, "lure_keyword")
	}
	if tld := topLevelDomain(host); tld != "" {
		if _, ok := abuseTLDs[tld]; ok {
			link.Reasons = append(link.Reasons, "abuse_tld")
		}
	}
	if u.User != nil || strings.Contains(authority(raw), "@") {
		link.Reasons = append(link.Reasons, "credential_injection")
	}
	return link, true
}

func topLevelDomain(host string) string {
	if net.ParseIP(host) != nil {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(host)
	if i := strings.LastIndexByte(suffix, '.'); i >= 0 {
		suffix = suffix[i+1:]
	}
	return suffix
}

// authority returns the text between "://" and the first path, query or
// fragment delimiter.
func authority(raw string) string {
	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
