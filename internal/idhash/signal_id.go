package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"chainwatch/internal/domain"
)

// ComputeSignalID computes a deterministic signal_id using SHA256.
// Formula: SHA256(user_id|channel_id|chain|address|created_at)
// Returns hex-encoded hash (64 characters).
func ComputeSignalID(
	userID int64,
	channelID int64,
	chain domain.Chain,
	address string,
	createdAt int64,
) string {
	data := fmt.Sprintf("%d|%d|%s|%s|%d",
		userID,
		channelID,
		string(chain),
		address,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
