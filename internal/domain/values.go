package domain

// Frequency is how often a recurring template fires.
// Value object - immutable string enum.
//
// Every switch over Frequency must list all four values; the frequencyswitch
// linter in tools/linters enforces this.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Frequencies returns all supported frequencies in canonical order.
func Frequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}
}

// TransactionType distinguishes money coming in from money going out.
// Value object - immutable string enum.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)
