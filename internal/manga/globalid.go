package manga

import (
	"fmt"
	"strings"
)

// GlobalID is the composite "provider:rawId" identifier used at every
// aggregation boundary. The wire format is a stable contract.
type GlobalID struct {
	Provider string
	Raw      string
}

// ParseGlobalID splits a "provider:rawId" string. Raw ids may themselves
// contain colons (UUIDs with prefixes, URL-ish ids), so only the first
// separator is significant. Malformed ids are rejected, never truncated.
func ParseGlobalID(s string) (GlobalID, error) {
	provider, raw, found := strings.Cut(s, ":")
	if !found || provider == "" || raw == "" {
		return GlobalID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return GlobalID{Provider: provider, Raw: raw}, nil
}

// String formats the id back into the wire form.
func (g GlobalID) String() string {
	return g.Provider + ":" + g.Raw
}
