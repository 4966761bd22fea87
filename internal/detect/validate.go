package detect

import (
	"strings"

	"chainwatch/internal/domain"
)

// Known placeholder/burn constants rejected outright.
const (
	evmZeroAddress = "0x0000000000000000000000000000000000000000"
	evmDeadAddress = "0xdead000000000000000000000000000000000000"

	// solanaBurnRun is a run of 1s long enough to only occur in the system
	// program address and burn placeholders, never in a real mint.
	solanaBurnRun = "11111111111111111111111111111111"
)

// ValidAddress applies the per-chain sanity rules to an already
// shape-matched address. Pure predicate, no side effects.
func ValidAddress(chain domain.Chain, address string) bool {
	switch chain {
	case domain.ChainSolana:
		if len(address) < 32 || len(address) > 44 {
			return false
		}
		// Placeholder/burn pattern: long run of the digit 1.
		if strings.Contains(address, solanaBurnRun) {
			return false
		}
	case domain.ChainBSC, domain.ChainBase, domain.ChainEthereum, domain.ChainArbitrum:
		if len(address) != 42 || !strings.HasPrefix(address, "0x") {
			return false
		}
		switch strings.ToLower(address) {
		case evmZeroAddress, evmDeadAddress:
			return false
		}
	case domain.ChainTron:
		if len(address) != 34 || !strings.HasPrefix(address, "T") {
			return false
		}
	default:
		return false
	}
	return true
}

// matchesShape reports whether address has the canonical shape for chain.
// Used when the chain is already known (aggregator link identity) so that
// a chain/address pair is never produced inconsistently.
func matchesShape(chain domain.Chain, address string) bool {
	switch chain {
	case domain.ChainSolana:
		return len(address) >= 32 && len(address) <= 44 &&
			!strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "T")
	case domain.ChainTron:
		return tronRe.MatchString(address)
	default:
		return evmRe.MatchString(address)
	}
}
