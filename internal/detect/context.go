package detect

import (
	"strings"

	"chainwatch/internal/domain"
)

// chainKeyword binds a chain to the context keywords that select it.
type chainKeyword struct {
	chain    domain.Chain
	keywords []string
}

// chainKeywords is the disambiguation table. The order is a deliberate
// tie-break: a message mentioning several chain names must resolve
// predictably, so the first matching entry wins and there is no scoring.
// Keywords are plain substrings ("eth" intentionally also matches inside
// "ethereum").
var chainKeywords = []chainKeyword{
	{domain.ChainBSC, []string{"bsc"}},
	{domain.ChainEthereum, []string{"ethereum", "eth"}},
	{domain.ChainBase, []string{"base"}},
	{domain.ChainArbitrum, []string{"arb", "arbitrum"}},
	{domain.ChainSolana, []string{"sol", "solana"}},
	{domain.ChainTron, []string{"trx", "tron"}},
}

// ChainFromContext resolves a chain from free-form context text by
// case-insensitive keyword search in fixed priority order. Returns false
// when no keyword occurs; the detector then applies its default policy.
func ChainFromContext(context string) (domain.Chain, bool) {
	lower := strings.ToLower(context)
	for _, ck := range chainKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				return ck.chain, true
			}
		}
	}
	return "", false
}
