package settings

import "chainwatch/internal/domain"

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

// Default returns the out-of-the-box safety configuration: every chain
// enabled, conservative market-cap and holder floors scaled to each
// chain's typical launch size, and the freeze-authority check on for
// solana where freezable tokens are the common rug vector.
func Default() *domain.Settings {
	return &domain.Settings{
		EnabledChains: append([]domain.Chain(nil), domain.AllChains...),
		Chains: map[domain.Chain]*domain.ChainSettings{
			domain.ChainSolana: {
				MarketCapMin:         fptr(5000),
				HoldersMin:           iptr(25),
				CheckFreezeAuthority: true,
			},
			domain.ChainBSC: {
				MarketCapMin: fptr(50000),
				HoldersMin:   iptr(100),
			},
			domain.ChainBase: {
				MarketCapMin: fptr(50000),
				HoldersMin:   iptr(100),
			},
			domain.ChainEthereum: {
				MarketCapMin: fptr(100000),
				HoldersMin:   iptr(200),
			},
			domain.ChainArbitrum: {
				MarketCapMin: fptr(50000),
				HoldersMin:   iptr(100),
			},
			domain.ChainTron: {
				MarketCapMin: fptr(50000),
				HoldersMin:   iptr(100),
			},
		},
	}
}
