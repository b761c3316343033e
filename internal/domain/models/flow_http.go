package models

// Requests for flow HTTP endpoints. Defined in domain for consistency and reuse.

type FlowRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	Period     string `query:"period" json:"period" default:"15m" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h"`
	Indicators string `query:"indicators" json:"indicators" default:"CVD,TAKER,OI,OI_DELTA,FUNDING,DEPTH,IMBALANCE"`
	At         string `query:"at" json:"at"`
}
