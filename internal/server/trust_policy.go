package server

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var ErrorInvalidTrustedEntry = errors.New("invalid trusted entry")

type TrustPolicy interface {
	Trusts(address string) bool
}

// Allowlist trusts addresses that exactly equal one of its literal entries,
// or that parse as an IP inside one of its CIDR ranges.
type Allowlist struct {
	entries  []string
	literals map[string]struct{}
	prefixes []netip.Prefix
}

func NewAllowlist(entries []string) (*Allowlist, error) {
	allowlist := &Allowlist{
		literals: map[string]struct{}{},
	}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, ErrorInvalidTrustedEntry)
			}
			allowlist.prefixes = append(allowlist.prefixes, prefix.Masked())
		} else {
			allowlist.literals[entry] = struct{}{}
		}

		allowlist.entries = append(allowlist.entries, entry)
	}

	return allowlist, nil
}

func (a *Allowlist) Trusts(address string) bool {
	if address == "" {
		return false
	}

	if _, ok := a.literals[address]; ok {
		return true
	}

	return a.inTrustedRange(address)
}

func (a *Allowlist) Entries() []string {
	return a.entries
}

// Matches reports whether a single entry of the allowlist accepts the
// address, using the same rules as Trusts.
func (a *Allowlist) Matches(entry string, address string) bool {
	if address == "" {
		return false
	}

	if !strings.Contains(entry, "/") {
		return entry == address
	}

	prefix, err := netip.ParsePrefix(entry)
	if err != nil {
		return false
	}

	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	return prefix.Contains(addr.Unmap())
}

// Private

func (a *Allowlist) inTrustedRange(address string) bool {
	if len(a.prefixes) == 0 {
		return false
	}

	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range a.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
