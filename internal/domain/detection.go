package domain

// Detection is a successful contract-address extraction: the chain plus the
// address as it appeared (cleaned) in the message. Invariant: Address always
// matches the canonical shape for Chain (EVM 0x+40 hex, TRON T+33 base58,
// Solana 32-44 base58).
type Detection struct {
	Chain   Chain
	Address string
}
