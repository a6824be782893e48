package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatRupees formats an amount the way the dashboard shows order totals.
// Example: 2350 -> "Rs 2,350.00"
func FormatRupees(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	formatted := fmt.Sprintf("%.2f", math.Round(amount*100)/100)

	// Pisahkan bagian desimal
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// Tambahkan pemisah ribuan
	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	return "Rs " + sign + strings.Join(result, ",") + "." + decimalPart
}

// ToCents converts a decimal amount to integer cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
