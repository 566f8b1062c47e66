package recurring

import "github.com/rezkam/ledger/internal/domain"

// FrequencyDisplayName returns the human-readable label for a frequency.
func FrequencyDisplayName(frequency domain.Frequency) string {
	switch frequency {
	case domain.FrequencyDaily:
		return "Daily"
	case domain.FrequencyWeekly:
		return "Weekly"
	case domain.FrequencyMonthly:
		return "Monthly"
	case domain.FrequencyYearly:
		return "Yearly"
	default:
		return "Unknown"
	}
}
