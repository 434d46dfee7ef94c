package currency

import (
	"fmt"
	"math"
	"strings"
)

// Format renders a whole-unit amount prefixed with its currency code. INR uses
// Indian grouping (1,23,45,678); everything else groups by thousands.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	var formatted string
	if code == "INR" {
		formatted = addIndianSeparators(intStr, ",")
	} else {
		formatted = addThousandsSeparator(intStr, ",")
	}

	result := formatted
	if code != "" {
		result = code + " " + formatted
	}
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}

// addIndianSeparators groups the last three digits, then pairs.
func addIndianSeparators(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	head, tail := s[:n-3], s[n-3:]
	var b strings.Builder
	lead := len(head) % 2
	if lead == 1 {
		b.WriteString(head[:1])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteString(sep)
	b.WriteString(tail)
	return b.String()
}
