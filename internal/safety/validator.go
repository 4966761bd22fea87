package safety

import (
	"fmt"

	"chainwatch/internal/domain"
)

// Rule identifiers, used in ValidationResult.Rule and as metric labels.
const (
	RuleChainEnabled    = "chain_enabled"
	RuleMarketCapMin    = "market_cap_min"
	RuleMarketCapMax    = "market_cap_max"
	RuleHoldersMin      = "holders_min"
	RuleSnipersMax      = "snipers_max"
	RuleLaunchMigration = "launch_migration"
	RuleVolumeRatio     = "volume_ratio" // suffixed with _<window>
	RuleFreezeAuthority = "freeze_authority"
	RuleMintAuthority   = "mint_authority"
	RuleTop10Holders    = "top10_holders"
	RuleLPBurn          = "lp_burn"
)

// Validator evaluates a market snapshot against chain-scoped safety settings.
type Validator struct{}

// NewValidator creates a new safety validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs the ordered rule battery and stops at the first failing
// rule. Unset thresholds impose no constraint, with one exception: a
// configured LP-burn minimum treats a missing LP fraction as failing.
//
// Unit convention: Top10HolderMax and LPBurnMin are fractions in [0,1];
// volume-ratio thresholds are raw percentages in [0,100]. The two rule
// families deliberately use different units and must not be unified.
func (v *Validator) Validate(snap *domain.MarketSnapshot, chain domain.Chain, settings *domain.Settings) domain.ValidationResult {
	// 1. Chain enablement.
	if !settings.ChainEnabled(chain) {
		return reject(RuleChainEnabled, "chain %s is disabled in settings", chain)
	}

	cs := settings.ForChain(chain)

	// 2. Market cap bounds, inclusive on both ends.
	if cs.MarketCapMin != nil && snap.MarketCap < *cs.MarketCapMin {
		return reject(RuleMarketCapMin, "market cap %.0f below minimum %.0f", snap.MarketCap, *cs.MarketCapMin)
	}
	if cs.MarketCapMax != nil && snap.MarketCap > *cs.MarketCapMax {
		return reject(RuleMarketCapMax, "market cap %.0f above maximum %.0f", snap.MarketCap, *cs.MarketCapMax)
	}

	// 3. Holder count.
	if cs.HoldersMin != nil && snap.Holders < *cs.HoldersMin {
		return reject(RuleHoldersMin, "holders %d below minimum %d", snap.Holders, *cs.HoldersMin)
	}

	// 4. Sniper count.
	if cs.SnipersMax != nil && snap.Snipers > *cs.SnipersMax {
		return reject(RuleSnipersMax, "snipers %d above maximum %d", snap.Snipers, *cs.SnipersMax)
	}

	// 5. Launch-migration requirement.
	if cs.RequireLaunchMigration && !snap.LaunchMigration {
		return reject(RuleLaunchMigration, "token is not a launch migration")
	}

	// 6. Per-window volume ratio. The dead-token rule fires even when no
	// threshold is configured for the window: positive sells against zero
	// buys means pure selling pressure.
	for _, w := range domain.VolumeWindows {
		vol := snap.Volume(w)
		if vol.Buy <= 0 && vol.Sell > 0 {
			return reject(volumeRule(w), "dead token: %s sell volume %.2f with zero buy volume", w, vol.Sell)
		}
		threshold := cs.VolumeRatio[w]
		if threshold == nil || vol.Buy <= 0 {
			continue
		}
		ratio := vol.Sell / vol.Buy
		if ratio >= 1+*threshold/100 {
			return reject(volumeRule(w), "%s sell/buy ratio %.2f exceeds threshold %.0f%%", w, ratio, *threshold)
		}
	}

	// 7. Freeze authority.
	if cs.CheckFreezeAuthority && (snap.Safety.FreezeAuthority || snap.Safety.CanFreeze) {
		return reject(RuleFreezeAuthority, "freeze authority present")
	}

	// 8. Mint authority.
	if cs.CheckMintAuthority && (snap.Safety.MintAuthority || snap.Safety.CanMint) {
		return reject(RuleMintAuthority, "mint authority present")
	}

	// 9. Top-10 holder concentration.
	if cs.Top10HolderMax != nil && snap.Safety.Top10HolderRate > *cs.Top10HolderMax {
		return reject(RuleTop10Holders, "top-10 holders own %.1f%%, maximum %.1f%%",
			snap.Safety.Top10HolderRate*100, *cs.Top10HolderMax*100)
	}

	// 10. LP burn/lock minimum. A missing fraction fails the rule rather
	// than skipping it.
	if cs.LPBurnMin != nil {
		if snap.Safety.BurnedOrLockedLP == nil {
			return reject(RuleLPBurn, "LP burn/lock data unavailable, minimum %.1f%% required", *cs.LPBurnMin*100)
		}
		if *snap.Safety.BurnedOrLockedLP < *cs.LPBurnMin {
			return reject(RuleLPBurn, "LP burned/locked %.1f%% below minimum %.1f%%",
				*snap.Safety.BurnedOrLockedLP*100, *cs.LPBurnMin*100)
		}
	}

	return domain.ValidationResult{IsSafe: true}
}

func volumeRule(w domain.VolumeWindow) string {
	return RuleVolumeRatio + "_" + string(w)
}

func reject(rule, format string, args ...any) domain.ValidationResult {
	return domain.ValidationResult{
		IsSafe:          false,
		Rule:            rule,
		RejectionReason: fmt.Sprintf(format, args...),
	}
}
