package vault

import "strings"

// The ledger reports contract failures as free text. Classify maps the messages
// the vault contract is known to produce onto local kinds; unknown text maps to
// nil and callers fall back to the generic kind. Replace with structured codes
// if the ledger interface starts returning them.
var contractMessages = []struct {
	substr string
	kind   error
}{
	{"still locked", ErrStillLocked},
	{"already withdrawn", ErrVaultInactive},
	{"not active", ErrVaultInactive},
	{"penalty", ErrInvalidPenalty},
	{"lock duration", ErrInvalidDuration},
	{"amount must be positive", ErrInvalidAmount},
	{"not found", ErrVaultNotFound},
	{"unauthorized", ErrUnauthorized},
}

// Classify returns the local error kind matching a ledger diagnostic, or nil.
func Classify(diagnostic string) error {
	msg := strings.ToLower(diagnostic)
	if msg == "" {
		return nil
	}
	for _, m := range contractMessages {
		if strings.Contains(msg, m.substr) {
			return m.kind
		}
	}
	return nil
}
