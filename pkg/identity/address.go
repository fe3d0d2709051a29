// Package identity resolves inbound sender addresses to internal user
// ids through the Identity Toolkit lookup API.
package identity

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// addressPattern finds the first RFC 5322-looking address substring in
// headers net/mail cannot handle: stray text after the angle-addr,
// unquoted display names with commas, trailing punctuation.
var addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Sender is a parsed From header value.
type Sender struct {
	// Address is the extracted address, lowercased and trimmed.
	Address string
	// DisplayName is the friendly name, when the header carried one.
	DisplayName string
}

// ParseSender extracts the sender address from a raw From value. Both
// bare addresses and "Display Name <addr>" forms parse cleanly; for
// anything malformed the first address-shaped substring wins. Plus-tags
// and subdomains pass through untouched. Returns an error only when no
// address can be found at all.
func ParseSender(raw string) (Sender, error) {
	trimmed := strings.TrimSpace(raw)

	if addr, err := mail.ParseAddress(trimmed); err == nil {
		return Sender{
			Address:     strings.ToLower(strings.TrimSpace(addr.Address)),
			DisplayName: addr.Name,
		}, nil
	}

	if match := addressPattern.FindString(trimmed); match != "" {
		return Sender{Address: strings.ToLower(match)}, nil
	}

	return Sender{}, fmt.Errorf("no email address found in %q", raw)
}
