// Package validators checks user supplied server addresses.
package validators

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/mozillazg/go-unidecode"
)

// HostReason explains why a host was rejected
type HostReason string

const (
	// ReasonPort means the port segment is not an integer in 0-65535
	ReasonPort HostReason = "port"

	// ReasonBogon means the host is an IP address that is not publicly routable
	ReasonBogon HostReason = "bogon"

	// ReasonUnderscore means the host is not a valid FQDN and contains an underscore,
	// which the status provider cannot resolve
	ReasonUnderscore HostReason = "underscore"

	// ReasonInvalid means the host is neither an IP address nor a valid FQDN
	ReasonInvalid HostReason = "invalid"
)

const (
	maxPort        = 65535
	maxFQDNLength  = 253
	maxLabelLength = 63
)

var (
	tldPattern   = regexp.MustCompile(`^(?i:[a-z]{2,}|xn[a-z0-9-]{2,})$`)
	labelPattern = regexp.MustCompile(`^(?i:[a-z0-9]([a-z0-9-]*[a-z0-9])?)$`)
)

// bogonPrefixes are the address ranges that must never be pinged on behalf of a user
var bogonPrefixes = mustParsePrefixes(
	// IPv4
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.88.99.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"255.255.255.255/32",
	// IPv6
	"::/128",
	"::1/128",
	"64:ff9b:1::/48",
	"100::/64",
	"2001:db8::/32",
	"fc00::/7",
	"fe80::/10",
	"ff00::/8",
)

// HostResult is the outcome of ValidateHost
type HostResult struct {
	Valid  bool       `json:"valid"`
	Reason HostReason `json:"reason,omitempty"`
}

// HostOption configures ValidateHost
type HostOption func(*hostOptions)

type hostOptions struct {
	allowPrivate bool
}

// WithAllowPrivate permits private and otherwise non-routable IP addresses.
// Only intended for self-hosted deployments.
func WithAllowPrivate(allow bool) HostOption {
	return func(o *hostOptions) {
		o.allowPrivate = allow
	}
}

// ValidateHost checks an address of the form host[:port] before any network
// call is made for it. The host is transliterated to ASCII first so that
// look-alike characters cannot smuggle a different host past the checks.
//
// A host error takes precedence over a port error.
func ValidateHost(address string, opts ...HostOption) HostResult {
	o := &hostOptions{}
	for _, opt := range opts {
		opt(o)
	}

	host, port, hasPort := strings.Cut(address, ":")

	result := validateHostname(host, o)
	if !result.Valid || !hasPort {
		return result
	}

	if !isPort(port) {
		return HostResult{Valid: false, Reason: ReasonPort}
	}
	return result
}

// NormalizeHost folds a host to its ASCII transliteration
func NormalizeHost(host string) string {
	return unidecode.Unidecode(host)
}

func validateHostname(host string, o *hostOptions) HostResult {
	decoded := NormalizeHost(host)

	if govalidator.IsIP(decoded) {
		if !o.allowPrivate && IsBogon(decoded) {
			return HostResult{Valid: false, Reason: ReasonBogon}
		}
		return HostResult{Valid: true}
	}

	if !isFQDN(decoded) {
		if strings.Contains(decoded, "_") {
			return HostResult{Valid: false, Reason: ReasonUnderscore}
		}
		return HostResult{Valid: false, Reason: ReasonInvalid}
	}

	return HostResult{Valid: true}
}

// IsBogon reports whether ip is a literal address inside a non-routable range.
// Strings that are not IP addresses are never bogons.
func IsBogon(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range bogonPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func isPort(s string) bool {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= maxPort
}

// isFQDN requires a top level domain, rejects underscores and enforces
// label length and hyphen placement rules
func isFQDN(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > maxFQDNLength {
		return false
	}
	if !govalidator.IsDNSName(host) {
		return false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	if !tldPattern.MatchString(labels[len(labels)-1]) {
		return false
	}
	for _, label := range labels {
		if len(label) > maxLabelLength || !labelPattern.MatchString(label) {
			return false
		}
	}
	return true
}

func mustParsePrefixes(prefixes ...string) []netip.Prefix {
	parsed := make([]netip.Prefix, 0, len(prefixes))
	for _, p := range prefixes {
		parsed = append(parsed, netip.MustParsePrefix(p))
	}
	return parsed
}
