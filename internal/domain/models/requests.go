package models

// Requests for the signals/backtest HTTP endpoints. Defined in domain for
// consistency and reuse.

type LatestSignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
	Active *bool  `query:"active" json:"active" default:"true"`
}

type GenerateSignalRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	TF       string `query:"tf" json:"tf" default:"1h" validate:"oneof=15m 1h 4h 1d"`
	Lookback int    `query:"lookback" json:"lookback" default:"100" validate:"gte=50,lte=1000"`
	Async    bool   `query:"async" json:"async"`
}

type BacktestRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=15m 1h 4h 1d"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=1,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=15m 1h 4h 1d"`
}
