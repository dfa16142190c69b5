package report

import (
	"github.com/shopspring/decimal"

	"github.com/moneta/finance-engine/finance"
	"github.com/moneta/finance-engine/ledger"
)

// Dashboard is the top-level overview: derived balances grouped by
// account type plus the current month's activity.
type Dashboard struct {
	TotalBalance        decimal.Decimal
	BankBalance         decimal.Decimal
	CashBalance         decimal.Decimal
	InvestmentBalance   decimal.Decimal
	Accounts            []ledger.AccountBalance
	CurrentMonthIncome  decimal.Decimal
	CurrentMonthExpense decimal.Decimal
	CurrentMonthNet     decimal.Decimal
}

// BuildDashboard composes account balances and current-month totals.
// The headline total covers bank, cash, and investment accounts;
// "other" accounts are listed but stay out of the headline figure.
func BuildDashboard(balances []ledger.AccountBalance, monthIncome, monthExpense decimal.Decimal) Dashboard {
	d := Dashboard{
		Accounts:            balances,
		CurrentMonthIncome:  monthIncome,
		CurrentMonthExpense: monthExpense,
		CurrentMonthNet:     monthIncome.Sub(monthExpense),
	}

	for _, b := range balances {
		switch b.Account.Type {
		case finance.AccountBank:
			d.BankBalance = d.BankBalance.Add(b.Balance)
		case finance.AccountCash:
			d.CashBalance = d.CashBalance.Add(b.Balance)
		case finance.AccountInvestment:
			d.InvestmentBalance = d.InvestmentBalance.Add(b.Balance)
		}
	}
	d.TotalBalance = d.BankBalance.Add(d.CashBalance).Add(d.InvestmentBalance)
	return d
}
