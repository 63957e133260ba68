// Package urlnorm normalizes raw URLs into stable comparison keys so that
// the same real-world resource discovered through different links (tracking
// parameters, mirrors, mobile hosts, arXiv PDF vs abstract pages) maps to a
// single canonical string.
package urlnorm

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// trackingParams are query parameters that never identify the resource
// itself, only how the visitor arrived at it.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_content":  true,
	"utm_term":     true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
	"wbraid":       true,
	"gbraid":       true,
	"ref":          true,
	"referrer":     true,
	"source":       true,
	"_ga":          true,
}

var (
	arxivRe   = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d+\.\d+)`)
	githubRe  = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)
	youtubeRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`)
)

// Normalize converts a raw URL into its canonical form. The transformation
// is a pure function of the input and idempotent: normalizing an already
// normalized URL yields the same value. Malformed input never errors; the
// fallback is a lowercase copy of the raw string.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(rawURL)
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if port := parsed.Port(); port != "" && port != "80" && port != "443" {
		host += ":" + port
	}

	path := strings.ToLower(parsed.EscapedPath())
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	query := cleanQuery(parsed.Query())

	rebuilt := "https://" + host + path
	if query != "" {
		rebuilt += "?" + query
	}

	rebuilt = normalizePlatform(rebuilt)

	return strings.ToLower(rebuilt)
}

// cleanQuery drops tracking parameters and rebuilds the query string with
// keys in lexicographic order.
func cleanQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if trackingParams[strings.ToLower(key)] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, value := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

// normalizePlatform applies platform-specific collapsing rules. Order
// matters; the first matching rule wins.
func normalizePlatform(u string) string {
	if strings.Contains(u, "arxiv.org") {
		if m := arxivRe.FindStringSubmatch(u); m != nil {
			return "https://arxiv.org/abs/" + m[1]
		}
	}
	if strings.Contains(u, "github.com") &&
		!strings.Contains(u, "/blob/") &&
		!strings.Contains(u, "/issues/") {
		if m := githubRe.FindStringSubmatch(u); m != nil {
			return "https://github.com/" + m[1] + "/" + m[2]
		}
	}
	if strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be") {
		if m := youtubeRe.FindStringSubmatch(u); m != nil {
			return "https://www.youtube.com/watch?v=" + m[1]
		}
	}
	return u
}

// SameURL reports whether two raw URLs point at the same resource. Two URLs
// are the same exactly when their normalized forms are equal; the historical
// same-domain/same-path clause reduces to this comparison.
func SameURL(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Hash returns a short stable digest of the normalized URL, used on audit
// rows for forensic matching without retaining the full URL.
func Hash(rawURL string) string {
	sum := sha256.Sum256([]byte(Normalize(rawURL)))
	return hex.EncodeToString(sum[:])[:16]
}
