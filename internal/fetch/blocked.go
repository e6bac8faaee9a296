package fetch

import (
	"net/netip"
)

// blockedPrefixes lists every address range a fetch may never reach:
// unspecified, loopback, private, link-local, shared, documentation,
// benchmarking, multicast and reserved space for both families
var blockedPrefixes = mustPrefixes(
	// IPv4
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
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
	"64:ff9b::/96",
	"100::/64",
	"2001:db8::/32",
	"2001:10::/28",
	"fc00::/7",
	"fe80::/10",
	"ff00::/8",
)

func mustPrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		out[i] = netip.MustParsePrefix(c)
	}
	return out
}

// IsBlocked reports whether ip falls in a blocked range. Input that does not
// parse as an address is treated as blocked.
func IsBlocked(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	return isBlockedAddr(addr)
}

func isBlockedAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.WithZone("")
	// ::ffff:0:0/96 is judged by the embedded IPv4 address
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ValidateAddresses rejects the whole set when any candidate is blocked or
// when there is nothing to validate
func ValidateAddresses(addrs []netip.Addr) error {
	return validateWith(addrs, isBlockedAddr)
}

func validateWith(addrs []netip.Addr, blocked func(netip.Addr) bool) error {
	if len(addrs) == 0 {
		return &PolicyError{Reason: "no addresses to validate"}
	}
	for _, a := range addrs {
		if blocked(a) {
			return &PolicyError{Reason: "address " + a.String() + " is in a blocked range"}
		}
	}
	return nil
}
