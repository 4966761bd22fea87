package domain

// Chain identifies a supported blockchain network.
type Chain string

// Supported chains. The set is closed: detection never produces a chain
// outside this list.
const (
	ChainSolana   Chain = "solana"
	ChainBSC      Chain = "bsc"
	ChainEthereum Chain = "ethereum"
	ChainBase     Chain = "base"
	ChainArbitrum Chain = "arbitrum"
	ChainTron     Chain = "tron"
)

// AllChains lists every supported chain in display order.
var AllChains = []Chain{
	ChainSolana,
	ChainBSC,
	ChainEthereum,
	ChainBase,
	ChainArbitrum,
	ChainTron,
}

// IsEVM reports whether the chain uses 0x-prefixed 20-byte addresses.
func (c Chain) IsEVM() bool {
	switch c {
	case ChainBSC, ChainEthereum, ChainBase, ChainArbitrum:
		return true
	}
	return false
}

// Valid reports whether c is one of the supported chains.
func (c Chain) Valid() bool {
	switch c {
	case ChainSolana, ChainBSC, ChainEthereum, ChainBase, ChainArbitrum, ChainTron:
		return true
	}
	return false
}

// String returns the canonical lowercase chain name.
func (c Chain) String() string {
	return string(c)
}
