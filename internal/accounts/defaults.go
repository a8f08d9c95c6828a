package accounts

import "github.com/tallybook-dev/tallybook/internal/model"

// DefaultChart returns the five root accounts seeded into every new
// company, one per account type.
func DefaultChart() []model.Account {
	return []model.Account{
		{Code: "1000", Name: "Assets", Type: model.AccountTypeAsset},
		{Code: "2000", Name: "Liabilities", Type: model.AccountTypeLiability},
		{Code: "3000", Name: "Equity", Type: model.AccountTypeEquity},
		{Code: "4000", Name: "Revenue", Type: model.AccountTypeRevenue},
		{Code: "5000", Name: "Expenses", Type: model.AccountTypeExpense},
	}
}
