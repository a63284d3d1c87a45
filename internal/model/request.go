package model

import "encoding/json"

// Optional distinguishes "field absent" from "field present but null" in
// PATCH bodies. Moving a category to the root is expressed as parentId: null,
// which a plain pointer cannot tell apart from an omitted field.
type Optional[T any] struct {
	Set   bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type CreateCategoryRequest struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	SortOrder *int    `json:"sortOrder"`
}

type UpdateCategoryRequest struct {
	Name      *string           `json:"name"`
	Type      *string           `json:"type"`
	ParentID  Optional[*string] `json:"parentId"`
	SortOrder *int              `json:"sortOrder"`
	IsActive  *bool             `json:"isActive"`
}

type ExpenseItemInput struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type CreateEventRequest struct {
	Date                  string             `json:"date"`
	Type                  string             `json:"type"`
	Amount                float64            `json:"amount"`
	Category              string             `json:"category"`
	Note                  *string            `json:"note"`
	OrderNo               string             `json:"orderNo"`
	CounterpartyName      string             `json:"counterpartyName"`
	Address               *string            `json:"address"`
	TelNo                 *string            `json:"telNo"`
	CustomerType          string             `json:"customerType"`
	WithholdingTaxPercent float64            `json:"withholdingTaxPercent"`
	WithholdingTaxAmount  float64            `json:"withholdingTaxAmount"`
	ServiceFeePercent     float64            `json:"serviceFeePercent"`
	ServiceFeeAmount      float64            `json:"serviceFeeAmount"`
	ExpenseItems          []ExpenseItemInput `json:"expenseItems"`
}

type UpdateEventRequest struct {
	Date                  *string             `json:"date"`
	Type                  *string             `json:"type"`
	Amount                *float64            `json:"amount"`
	Category              *string             `json:"category"`
	Note                  *string             `json:"note"`
	OrderNo               *string             `json:"orderNo"`
	CounterpartyName      *string             `json:"counterpartyName"`
	Address               *string             `json:"address"`
	TelNo                 *string             `json:"telNo"`
	CustomerType          *string             `json:"customerType"`
	WithholdingTaxPercent *float64            `json:"withholdingTaxPercent"`
	WithholdingTaxAmount  *float64            `json:"withholdingTaxAmount"`
	ServiceFeePercent     *float64            `json:"serviceFeePercent"`
	ServiceFeeAmount      *float64            `json:"serviceFeeAmount"`
	ExpenseItems          *[]ExpenseItemInput `json:"expenseItems"`
}
