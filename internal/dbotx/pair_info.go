package dbotx

import (
	"context"
	"net/http"
	"net/url"

	"chainwatch/internal/domain"
)

// pairInfo is the raw /kline/pair_info response element.
type pairInfo struct {
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	MarketCap         float64 `json:"marketCap"`
	Holders           int     `json:"holders"`
	SnipersCount      int     `json:"snipersCount"`
	IsLaunchMigration bool    `json:"isLaunchMigration"`

	BuyVolume1m   float64 `json:"buyVolume1m"`
	SellVolume1m  float64 `json:"sellVolume1m"`
	BuyVolume5m   float64 `json:"buyVolume5m"`
	SellVolume5m  float64 `json:"sellVolume5m"`
	BuyVolume1h   float64 `json:"buyVolume1h"`
	SellVolume1h  float64 `json:"sellVolume1h"`
	BuyVolume6h   float64 `json:"buyVolume6h"`
	SellVolume6h  float64 `json:"sellVolume6h"`
	BuyVolume24h  float64 `json:"buyVolume24h"`
	SellVolume24h float64 `json:"sellVolume24h"`

	SafetyInfo struct {
		FreezeAuthority bool     `json:"freezeAuthority"`
		CanFrozen       bool     `json:"canFrozen"`
		MintAuthority   bool     `json:"mintAuthority"`
		CanMint         bool     `json:"canMint"`
		Top10HolderRate float64  `json:"top10HolderRate"`
		// Nil when the API does not report LP status for this pair.
		BurnedOrLockedLpPercent *float64 `json:"burnedOrLockedLpPercent"`
	} `json:"safetyInfo"`
}

// GetPairInfo fetches the market snapshot used by safety validation.
// The API responds with an array; the first element describes the pair.
func (c *Client) GetPairInfo(ctx context.Context, chain domain.Chain, pair string) (*domain.MarketSnapshot, error) {
	params := url.Values{}
	params.Set("chain", string(chain))
	params.Set("pair", pair)

	var res []pairInfo
	if err := c.call(ctx, http.MethodGet, "/kline/pair_info", params, nil, &res); err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrPairNotFound
	}

	pi := res[0]
	snap := &domain.MarketSnapshot{
		Name:            pi.Name,
		Symbol:          pi.Symbol,
		MarketCap:       pi.MarketCap,
		Holders:         pi.Holders,
		Snipers:         pi.SnipersCount,
		LaunchMigration: pi.IsLaunchMigration,
		Volumes: map[domain.VolumeWindow]domain.WindowVolume{
			domain.Window1m:  {Buy: pi.BuyVolume1m, Sell: pi.SellVolume1m},
			domain.Window5m:  {Buy: pi.BuyVolume5m, Sell: pi.SellVolume5m},
			domain.Window1h:  {Buy: pi.BuyVolume1h, Sell: pi.SellVolume1h},
			domain.Window6h:  {Buy: pi.BuyVolume6h, Sell: pi.SellVolume6h},
			domain.Window24h: {Buy: pi.BuyVolume24h, Sell: pi.SellVolume24h},
		},
		Safety: domain.SafetyInfo{
			FreezeAuthority:  pi.SafetyInfo.FreezeAuthority,
			CanFreeze:        pi.SafetyInfo.CanFrozen,
			MintAuthority:    pi.SafetyInfo.MintAuthority,
			CanMint:          pi.SafetyInfo.CanMint,
			Top10HolderRate:  pi.SafetyInfo.Top10HolderRate,
			BurnedOrLockedLP: pi.SafetyInfo.BurnedOrLockedLpPercent,
		},
	}
	return snap, nil
}
