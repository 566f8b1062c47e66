package a

import "domain"

type Frequency string

func complete(f domain.Frequency) string {
	switch f {
	case domain.FrequencyDaily:
		return "Daily"
	case domain.FrequencyWeekly:
		return "Weekly"
	case domain.FrequencyMonthly:
		return "Monthly"
	case domain.FrequencyYearly:
		return "Yearly"
	}
	return domain.DefaultLabel
}

func groupedWithDefault(f domain.Frequency) bool {
	switch f {
	case domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly, domain.FrequencyYearly:
		return true
	default:
		return false
	}
}

func missingYearly(f domain.Frequency) int {
	switch f { // want "switch on domain.Frequency is missing FrequencyYearly"
	case domain.FrequencyDaily:
		return 1
	case domain.FrequencyWeekly:
		return 7
	case domain.FrequencyMonthly:
		return 30
	}
	return 0
}

func defaultDoesNotCover(f domain.Frequency) int {
	switch f { // want "switch on domain.Frequency is missing FrequencyMonthly, FrequencyYearly"
	case domain.FrequencyDaily, domain.FrequencyWeekly:
		return 1
	default:
		return 0
	}
}

func literalCase(f domain.Frequency) bool {
	switch f { // want "switch on domain.Frequency is missing FrequencyDaily, FrequencyMonthly, FrequencyWeekly"
	case "yearly":
		return true
	}
	return false
}

func localType(f Frequency) bool {
	switch f {
	case "daily":
		return true
	}
	return false
}

func tagless(f domain.Frequency) bool {
	switch {
	case f == domain.FrequencyDaily:
		return true
	}
	return false
}

func nolintSpecific(f domain.Frequency) bool {
	switch f { //nolint:frequencyswitch
	case domain.FrequencyDaily:
		return true
	}
	return false
}

func nolintOtherLinter(f domain.Frequency) bool {
	switch f { //nolint:otherlinter // want "switch on domain.Frequency is missing FrequencyMonthly, FrequencyWeekly, FrequencyYearly"
	case domain.FrequencyDaily:
		return true
	}
	return false
}
