package dbotx

import (
	"context"
	"net/http"

	"chainwatch/internal/domain"
)

// SwapOrder is the /automation/swap_order request payload.
type SwapOrder struct {
	Chain           domain.Chain `json:"chain"`
	Pair            string       `json:"pair"`
	WalletID        string       `json:"walletId"`
	Type            string       `json:"type"` // buy or sell
	AmountOrPercent float64      `json:"amountOrPercent"`

	// Gas and fee settings.
	CustomFeeAndTip bool    `json:"customFeeAndTip"`
	PriorityFee     string  `json:"priorityFee"` // empty string means auto
	GasFeeDelta     int     `json:"gasFeeDelta"`
	MaxFeePerGas    int     `json:"maxFeePerGas"`
	JitoEnabled     bool    `json:"jitoEnabled"`
	JitoTip         float64 `json:"jitoTip"`

	// Execution settings.
	MaxSlippage     float64 `json:"maxSlippage"`
	ConcurrentNodes int     `json:"concurrentNodes"`
	Retries         int     `json:"retries"`
}

// NewBuyOrder builds a buy order with the execution defaults used for
// fast sniping: auto priority fee, jito on, 15% slippage.
func NewBuyOrder(chain domain.Chain, pair, walletID string, amount float64) SwapOrder {
	return SwapOrder{
		Chain:           chain,
		Pair:            pair,
		WalletID:        walletID,
		Type:            "buy",
		AmountOrPercent: amount,
		GasFeeDelta:     5,
		MaxFeePerGas:    100,
		JitoEnabled:     true,
		JitoTip:         0.001,
		MaxSlippage:     0.15,
		ConcurrentNodes: 3,
		Retries:         2,
	}
}

// orderResult is the res payload of a successful swap order.
type orderResult struct {
	ID string `json:"id"`
}

// CreateSwapOrder submits a swap order and returns the API-side order id.
func (c *Client) CreateSwapOrder(ctx context.Context, order SwapOrder) (string, error) {
	var res orderResult
	if err := c.call(ctx, http.MethodPost, "/automation/swap_order", nil, order, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// FastBuy submits a buy order with default execution settings.
func (c *Client) FastBuy(ctx context.Context, chain domain.Chain, pair, walletID string, amount float64) (string, error) {
	return c.CreateSwapOrder(ctx, NewBuyOrder(chain, pair, walletID, amount))
}
