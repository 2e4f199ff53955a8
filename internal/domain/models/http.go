package models

// Requests for the signal-serving HTTP endpoints. Defined in domain for
// consistency and reuse.

type ListSignalsRequest struct {
	MinScore   int  `query:"minScore" json:"minScore" default:"0" validate:"gte=0,lte=100"`
	OnlyStrong bool `query:"onlyStrong" json:"onlyStrong"`
}

type GetSignalRequest struct {
	ID int64 `param:"id" json:"id" validate:"required"`
}

type CandlesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1m" validate:"oneof=1m 5m 15m"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=6000"`
}
