package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"chainwatch/internal/domain"
)

// ComputeOrderID computes a deterministic order_id using SHA256.
// Formula: SHA256(user_id|chain|token|created_at)
// Returns hex-encoded hash (64 characters).
func ComputeOrderID(
	userID int64,
	chain domain.Chain,
	token string,
	createdAt int64,
) string {
	data := fmt.Sprintf("%d|%s|%s|%d",
		userID,
		string(chain),
		token,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
