package domain

// Signal outcomes recorded in the history store.
const (
	SignalForwarded    = "forwarded"     // passed validation, order sent
	SignalRejected     = "rejected"      // failed a safety rule
	SignalLookupFailed = "lookup_failed" // pair-existence lookup could not verify
	SignalFetchFailed  = "fetch_failed"  // market snapshot fetch failed
)

// Signal is one detection event with its pipeline outcome.
// Corresponds to the signals table in ClickHouse (append-only).
type Signal struct {
	SignalID  string // deterministic hash
	UserID    int64
	ChannelID int64
	Chain     Chain
	Address   string // address as detected in the message
	Token     string // canonical token address, empty when lookup failed
	Outcome   string // forwarded | rejected | lookup_failed | fetch_failed
	Reason    string // rejection reason or failure detail
	Rule      string // failed safety rule, empty otherwise
	CreatedAt int64  // Unix timestamp in milliseconds
}
