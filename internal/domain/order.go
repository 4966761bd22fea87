package domain

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderFailed    = "failed"
)

// TradeOrder records one forwarded buy order.
// Corresponds to the orders table in PostgreSQL.
type TradeOrder struct {
	OrderID   string // deterministic hash, primary key
	UserID    int64  // FK to users
	Chain     Chain
	Token     string // canonical token address (post-lookup)
	ChannelID int64  // source channel
	Status    string // pending | completed | failed
	Error     string // failure detail, empty otherwise
	CreatedAt int64  // Unix timestamp in milliseconds
	UpdatedAt int64  // Unix timestamp in milliseconds
}
