package utils

import (
	"net/netip"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ApexDomain returns the registrable domain (eTLD+1) for a hostname,
// lowercased and without a trailing dot. IP literals, single-label names
// and names that are themselves a public suffix are returned as-is.
func ApexDomain(host string) string {
	name := strings.ToLower(strings.TrimSpace(host))
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	// publicsuffix has no notion of addresses and would return "1.1" for 192.168.1.1
	if _, err := netip.ParseAddr(name); err == nil {
		return name
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(name)
	if err != nil {
		return name
	}
	return apex
}
