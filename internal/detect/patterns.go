// Package detect implements contract-address detection and chain
// classification for noisy channel text: aggregator-link extraction,
// aggressive free-text extraction, candidate cleaning, and per-chain
// validation.
package detect

import (
	"regexp"

	"chainwatch/internal/domain"
)

// Per-chain format patterns. These match the canonical address shapes;
// chain-specific sanity rules live in validate.go.
var (
	// tronRe matches a full TRON address: T plus 33 base58 characters.
	tronRe = regexp.MustCompile(`^T[A-HJ-NP-Za-km-z1-9]{33}$`)

	// evmRe matches a full EVM address: 0x plus 40 hex characters.
	// Shared shape for bsc, ethereum, base and arbitrum.
	evmRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

	// solanaRe matches a full Solana address: 32-44 base58 characters.
	solanaRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

	// Free-text scan patterns (unanchored).
	tronScanRe = regexp.MustCompile(`T[A-HJ-NP-Za-km-z1-9]{33}`)
	evmScanRe  = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

	// base58RunRe finds maximal base58 runs; the detector applies
	// alphanumeric-boundary checks manually since RE2 has no lookaround.
	base58RunRe = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]+`)

	// pathSegmentRe captures 32+ alphanumeric path segments from URLs and
	// file paths.
	pathSegmentRe = regexp.MustCompile(`/([A-Za-z0-9]{32,})`)

	// zeroWidthRe matches zero-width Unicode characters injected by chat
	// clients.
	zeroWidthRe = regexp.MustCompile("[\u200b\u200c\u200d\ufeff]")

	// multiSpaceRe collapses runs of spaces within a single line.
	multiSpaceRe = regexp.MustCompile(` {2,}`)
)

// captureKind describes what a link pattern's groups yield.
type captureKind int

const (
	// captureAddress: one group, the address. Chain comes from the
	// pattern's fixed identity or from context disambiguation.
	captureAddress captureKind = iota
	// captureChainAddress: two groups, a chain identifier then the
	// address.
	captureChainAddress
)

// linkPattern is one aggregator-link matcher. Patterns are evaluated in
// slice order; the order is load-bearing precedence, not cosmetic.
type linkPattern struct {
	name  string
	re    *regexp.Regexp
	kind  captureKind
	chain domain.Chain // non-empty when the pattern itself implies the chain
}

// linkPatterns is the aggregator-link library in evaluation order:
// chain-specific subdomains first, chain-in-path sites next, then the
// single-purpose legacy sites, with the generic URL sweep last.
var linkPatterns = []linkPattern{
	{
		name:  "photon_sol",
		re:    regexp.MustCompile(`(?i)photon-sol\.tinyastro\.io/[^/\s]*/lp/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind:  captureAddress,
		chain: domain.ChainSolana,
	},
	{
		name:  "photon_bnb",
		re:    regexp.MustCompile(`(?i)photon-bnb\.tinyastro\.io/[^/\s]*/lp/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind:  captureAddress,
		chain: domain.ChainBSC,
	},
	{
		name:  "photon_base",
		re:    regexp.MustCompile(`(?i)photon-base\.tinyastro\.io/[^/\s]*/lp/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind:  captureAddress,
		chain: domain.ChainBase,
	},
	{
		name:  "photon_eth",
		re:    regexp.MustCompile(`(?i)photon\.tinyastro\.io/[^/\s]*/lp/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind:  captureAddress,
		chain: domain.ChainEthereum,
	},
	{
		name: "dexscreener",
		re:   regexp.MustCompile(`(?i)dexscreener\.com/(solana|base|arbitrum|bsc|tron|ethereum)/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind: captureChainAddress,
	},
	{
		name: "dbotx",
		re:   regexp.MustCompile(`(?i)dbotx\.com/token/(solana|bsc)/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind: captureChainAddress,
	},
	{
		name: "gmgn",
		re:   regexp.MustCompile(`(?i)gmgn\.ai/(sol|bsc|base|eth|tron)/token/([A-Za-z0-9]{32,})(?:\?|$|\s)`),
		kind: captureChainAddress,
	},
	{
		name: "dextools",
		re:   regexp.MustCompile(`(?i)dextools\.io/[^/\s]*/pair-explorer/([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
	{
		name: "birdeye",
		re:   regexp.MustCompile(`(?i)birdeye\.so/token/([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
	{
		name: "pump",
		re:   regexp.MustCompile(`(?i)pump\.fun/([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
	{
		name: "raydium",
		re:   regexp.MustCompile(`(?i)raydium\.io/[^/\s]*/([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
	{
		name: "jupiter",
		re:   regexp.MustCompile(`(?i)jup\.ag/swap/[^-\s]+-([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
	{
		name: "generic_url",
		re:   regexp.MustCompile(`(?i)https?://[^\s]+/([A-Za-z0-9]{32,})`),
		kind: captureAddress,
	},
}

// chainAliases maps aggregator chain identifiers (subdomains, path
// segments) to canonical chains.
var chainAliases = map[string]domain.Chain{
	"sol":      domain.ChainSolana,
	"solana":   domain.ChainSolana,
	"bnb":      domain.ChainBSC,
	"bsc":      domain.ChainBSC,
	"base":     domain.ChainBase,
	"eth":      domain.ChainEthereum,
	"ethereum": domain.ChainEthereum,
	"arbitrum": domain.ChainArbitrum,
	"tron":     domain.ChainTron,
}
