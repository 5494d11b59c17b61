package core

// CategorySum is an amount aggregated over one category.
type CategorySum struct {
	CategoryID int64
	Name       string
	Total      float64
}

// MonthOverview is a compact spending summary for one month-year key.
type MonthOverview struct {
	MonthYear  string
	Total      float64
	ByCategory []CategorySum
}

// Budget alert thresholds as a fraction of the month's maximum.
const (
	BudgetWarningThreshold = 0.80
	BudgetDangerThreshold  = 0.90
)

// BudgetLevel classifies spending against the monthly maximum.
type BudgetLevel int

const (
	BudgetOK BudgetLevel = iota
	BudgetWarning
	BudgetDanger
	BudgetExceeded
)

func (l BudgetLevel) String() string {
	switch l {
	case BudgetWarning:
		return "warning"
	case BudgetDanger:
		return "danger"
	case BudgetExceeded:
		return "exceeded"
	default:
		return "ok"
	}
}

// BudgetStatus pairs a month's spending with its budget, if one is set.
type BudgetStatus struct {
	MonthYear string
	Spent     float64
	Budget    *Budget // nil when no budget exists for the month
	Level     BudgetLevel
}

// ClassifySpending maps spent-vs-maximum onto an alert level. A zero
// maximum counts any spending as exceeded.
func ClassifySpending(spent, maxSpending float64) BudgetLevel {
	switch {
	case spent > maxSpending:
		return BudgetExceeded
	case maxSpending > 0 && spent >= maxSpending*BudgetDangerThreshold:
		return BudgetDanger
	case maxSpending > 0 && spent >= maxSpending*BudgetWarningThreshold:
		return BudgetWarning
	default:
		return BudgetOK
	}
}
