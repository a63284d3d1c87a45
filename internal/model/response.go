package model

import "encoding/json"

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e ExpenseEvent) MarshalJSON() ([]byte, error) {
	type alias ExpenseEvent
	return json.Marshal(struct {
		alias
		Amount               float64 `json:"amount"`
		WithholdingTaxAmount float64 `json:"withholdingTaxAmount"`
		ServiceFeeAmount     float64 `json:"serviceFeeAmount"`
	}{
		alias:                alias(e),
		Amount:               AmountFromCents(e.AmountCents),
		WithholdingTaxAmount: AmountFromCents(e.WithholdingTaxCents),
		ServiceFeeAmount:     AmountFromCents(e.ServiceFeeCents),
	})
}

func (i ExpenseItem) MarshalJSON() ([]byte, error) {
	type alias ExpenseItem
	return json.Marshal(struct {
		alias
		Amount float64 `json:"amount"`
	}{alias: alias(i), Amount: AmountFromCents(i.AmountCents)})
}
