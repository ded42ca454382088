package utils

import "fmt"

// FormatMinutes renders a minute count as a short human string: "45m",
// "2h", "1h 30m". Zero and negative values render as "0m".
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
