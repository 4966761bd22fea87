package domain

// User is a bot user with their safety settings.
// Corresponds to the users table in PostgreSQL; Settings is stored as JSONB.
type User struct {
	UserID   int64 // Telegram user ID, primary key
	Username string
	APIKey   string // trading API key, may be empty until configured
	// WalletID is the trading API wallet used for forwarded orders.
	WalletID string
	// BuyAmount is the per-order spend in the chain's native currency.
	BuyAmount    float64
	Settings     *Settings
	CreatedAt    int64 // Unix timestamp in milliseconds
	LastActiveAt int64 // Unix timestamp in milliseconds
}

// CanTrade reports whether the user has configured everything needed to
// forward orders.
func (u *User) CanTrade() bool {
	return u.APIKey != "" && u.WalletID != "" && u.BuyAmount > 0
}
