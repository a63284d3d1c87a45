package model

import "time"

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidType reports whether t is one of the two closed category/event types.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryNode is one node of the category forest returned by the tree view.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
