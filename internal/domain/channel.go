package domain

// FilterMode selects which channel messages reach the detection pipeline.
type FilterMode string

const (
	// FilterAll processes every message in the channel.
	FilterAll FilterMode = "all"
	// FilterAdmins processes only messages from channel admins.
	FilterAdmins FilterMode = "admins"
	// FilterUsers processes only messages from an explicit sender list.
	FilterUsers FilterMode = "users"
)

// Valid reports whether m is a known filter mode.
func (m FilterMode) Valid() bool {
	switch m {
	case FilterAll, FilterAdmins, FilterUsers:
		return true
	}
	return false
}

// ChannelSubscription binds a user to a monitored channel.
// Corresponds to the channel_subscriptions table in PostgreSQL.
type ChannelSubscription struct {
	ID        int64 // BIGSERIAL primary key
	UserID    int64 // FK to users
	ChannelID int64 // Telegram channel ID
	Name      string
	Mode      FilterMode
	// SenderIDs is the allow list for FilterUsers mode.
	SenderIDs []int64
	Active    bool
	CreatedAt int64 // Unix timestamp in milliseconds
}

// Matches reports whether a message from senderID (with the given admin
// flag) passes this subscription's filter.
func (c *ChannelSubscription) Matches(senderID int64, senderIsAdmin bool) bool {
	switch c.Mode {
	case FilterAdmins:
		return senderIsAdmin
	case FilterUsers:
		for _, id := range c.SenderIDs {
			if id == senderID {
				return true
			}
		}
		return false
	default:
		return true
	}
}
