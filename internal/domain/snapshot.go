package domain

// VolumeWindow names one of the five buy/sell volume aggregation windows.
type VolumeWindow string

// Volume windows reported by the market-data API.
const (
	Window1m  VolumeWindow = "1m"
	Window5m  VolumeWindow = "5m"
	Window1h  VolumeWindow = "1h"
	Window6h  VolumeWindow = "6h"
	Window24h VolumeWindow = "24h"
)

// VolumeWindows lists the windows in evaluation order.
var VolumeWindows = []VolumeWindow{Window1m, Window5m, Window1h, Window6h, Window24h}

// WindowVolume holds buy and sell volume for one window.
type WindowVolume struct {
	Buy  float64
	Sell float64
}

// SafetyInfo is the on-chain safety block of a market snapshot.
type SafetyInfo struct {
	FreezeAuthority bool // freeze authority account still set
	CanFreeze       bool // transfers can be frozen
	MintAuthority   bool // mint authority account still set
	CanMint         bool // new supply can be minted
	// Top10HolderRate is the fraction (0-1.0) of supply held by the ten
	// largest wallets.
	Top10HolderRate float64
	// BurnedOrLockedLP is the fraction (0-1.0) of LP tokens burned or
	// locked. Nil when the data source does not report it.
	BurnedOrLockedLP *float64
}

// MarketSnapshot is a point-in-time market-data record for one token pair,
// produced by the market-data collaborator and consumed read-only by the
// safety validator.
type MarketSnapshot struct {
	Name   string
	Symbol string

	MarketCap float64
	Holders   int
	Snipers   int

	// LaunchMigration is set when the token graduated from a bonding-curve
	// launch platform (pump.fun and similar) to a standard pool.
	LaunchMigration bool

	Volumes map[VolumeWindow]WindowVolume

	Safety SafetyInfo
}

// Volume returns the buy/sell volume for a window, zero when absent.
func (s *MarketSnapshot) Volume(w VolumeWindow) WindowVolume {
	if s.Volumes == nil {
		return WindowVolume{}
	}
	return s.Volumes[w]
}
