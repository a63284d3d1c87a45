package model

import "time"

const (
	CustomerIndividual = "individual"
	CustomerCompany    = "company"
)

type ExpenseItem struct {
	ID          string `json:"id"`
	EventID     string `json:"-"`
	Name        string `json:"name"`
	AmountCents int64  `json:"-"`
	Position    int    `json:"-"`
}

type ExpenseEvent struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"-"`
	Seq                   int64         `json:"seq"`
	Date                  time.Time     `json:"date"`
	Type                  string        `json:"type"`
	AmountCents           int64         `json:"-"`
	Category              string        `json:"category"`
	Note                  *string       `json:"note,omitempty"`
	OrderNo               string        `json:"orderNo"`
	CounterpartyName      string        `json:"counterpartyName"`
	Address               *string       `json:"address,omitempty"`
	TelNo                 *string       `json:"telNo,omitempty"`
	CustomerType          string        `json:"customerType"`
	WithholdingTaxPercent float64       `json:"withholdingTaxPercent"`
	WithholdingTaxCents   int64         `json:"-"`
	ServiceFeePercent     float64       `json:"serviceFeePercent"`
	ServiceFeeCents       int64         `json:"-"`
	Items                 []ExpenseItem `json:"expenseItems"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// Summary holds period totals; balance is income minus expense.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
