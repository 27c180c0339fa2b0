package booking

import "fmt"

// FormatDuration renders a minute count for display: "45 min" under an
// hour, whole hours as "1 hour"/"2 hours", otherwise "1h 30m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours, rem := minutes/60, minutes%60
	if rem == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}

// FormatPrice renders a price estimate, or an em-dash placeholder when no
// estimate is available.
func FormatPrice(price *float64) string {
	if price == nil {
		return "—"
	}
	return fmt.Sprintf("$%.2f", *price)
}
