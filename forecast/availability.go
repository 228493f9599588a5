package forecast

import (
	"slices"
	"strings"
)

// Add records that sign has data for period in month. Blank values are ignored.
func (a Availability) Add(sign string, period Period, month string) {
	sign = strings.ToLower(strings.TrimSpace(sign))
	month = strings.TrimSpace(month)
	if sign == "" || month == "" {
		return
	}

	pm := a[sign]
	switch period {
	case Daily:
		pm.Daily = append(pm.Daily, month)
	case Weekly:
		pm.Weekly = append(pm.Weekly, month)
	case Monthly:
		pm.Monthly = append(pm.Monthly, month)
	default:
		return
	}
	a[sign] = pm
}

// Compact sorts every month list ascending and removes duplicates.
// Nil lists become empty so they encode as [].
func (a Availability) Compact() Availability {
	for sign, pm := range a {
		pm.Daily = sortedUnique(pm.Daily)
		pm.Weekly = sortedUnique(pm.Weekly)
		pm.Monthly = sortedUnique(pm.Monthly)
		a[sign] = pm
	}
	return a
}

func sortedUnique(months []string) []string {
	if months == nil {
		return []string{}
	}
	slices.Sort(months)
	return slices.Compact(months)
}
