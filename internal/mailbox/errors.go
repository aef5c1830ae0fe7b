package mailbox

import "errors"

// Provisioning failures. The chat interface does not distinguish between them.
var (
	ErrNoDomainsAvailable  = errors.New("no domains available")
	ErrProviderRejected    = errors.New("provider rejected account creation")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
)

var (
	// ErrNotProvisioned means no mailbox is linked to the chat identity.
	ErrNotProvisioned = errors.New("no mailbox linked")
	// ErrStore wraps local persistence failures.
	ErrStore = errors.New("account store failure")
)
