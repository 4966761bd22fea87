package domain

// ChainSettings holds the per-chain safety thresholds. Nil pointers mean
// "unset": the corresponding rule is skipped.
//
// Unit convention, intentionally inconsistent between rule families:
// Top10HolderMax and LPBurnMin are fractions (0-1.0) compared
// against fraction-valued snapshot fields, while the VolumeRatio thresholds
// are raw percentages (0-100) applied to the sell/buy ratio. Do not unify.
type ChainSettings struct {
	MarketCapMin *float64
	MarketCapMax *float64
	HoldersMin   *int
	SnipersMax   *int

	RequireLaunchMigration bool

	// VolumeRatio thresholds per window, in raw percent (0-100).
	VolumeRatio map[VolumeWindow]*float64

	CheckFreezeAuthority bool
	CheckMintAuthority   bool

	// Fractions in 0-1.0.
	Top10HolderMax *float64
	LPBurnMin      *float64
}

// Settings is a user's full safety configuration: the globally enabled
// chain set plus per-chain thresholds.
type Settings struct {
	EnabledChains []Chain
	Chains        map[Chain]*ChainSettings
}

// ChainEnabled reports whether trading on c is globally enabled.
func (s *Settings) ChainEnabled(c Chain) bool {
	for _, ec := range s.EnabledChains {
		if ec == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{
		EnabledChains: append([]Chain(nil), s.EnabledChains...),
	}
	if s.Chains != nil {
		out.Chains = make(map[Chain]*ChainSettings, len(s.Chains))
		for chain, cs := range s.Chains {
			out.Chains[chain] = cs.clone()
		}
	}
	return out
}

func (cs *ChainSettings) clone() *ChainSettings {
	if cs == nil {
		return nil
	}
	out := &ChainSettings{
		MarketCapMin:           cloneptr(cs.MarketCapMin),
		MarketCapMax:           cloneptr(cs.MarketCapMax),
		HoldersMin:             cloneptr(cs.HoldersMin),
		SnipersMax:             cloneptr(cs.SnipersMax),
		RequireLaunchMigration: cs.RequireLaunchMigration,
		CheckFreezeAuthority:   cs.CheckFreezeAuthority,
		CheckMintAuthority:     cs.CheckMintAuthority,
		Top10HolderMax:         cloneptr(cs.Top10HolderMax),
		LPBurnMin:              cloneptr(cs.LPBurnMin),
	}
	if cs.VolumeRatio != nil {
		out.VolumeRatio = make(map[VolumeWindow]*float64, len(cs.VolumeRatio))
		for w, v := range cs.VolumeRatio {
			out.VolumeRatio[w] = cloneptr(v)
		}
	}
	return out
}

func cloneptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ForChain returns the settings for c, or empty settings when none are
// configured (every threshold unset).
func (s *Settings) ForChain(c Chain) *ChainSettings {
	if s.Chains != nil {
		if cs, ok := s.Chains[c]; ok && cs != nil {
			return cs
		}
	}
	return &ChainSettings{}
}
