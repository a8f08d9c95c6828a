package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists all valid account types.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account is one row in a company's chart of accounts. Code is the
// primary key and is immutable after creation. Balance is an advisory
// cache only; the authoritative balance is always derivable from
// ledger replay.
type Account struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Type    AccountType     `json:"type"`
	Parent  string          `json:"parent,omitempty"` // empty = top-level
	Balance decimal.Decimal `json:"balance"`
}
