package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts the form's price string to whole rupees. Non-numeric,
// non-positive and fractional amounts are rejected.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid("price", "price is required")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("price", "price must be a number")
	}
	if v <= 0 {
		return 0, invalid("price", "price must be positive")
	}
	if v != math.Trunc(v) {
		return 0, invalid("price", "price must be a whole amount")
	}
	if v > math.MaxInt64/2 {
		return 0, invalid("price", "price is too large")
	}

	return int64(v), nil
}

// FormatPrice renders an amount with the rupee sign and Indian digit grouping:
// the last three digits, then groups of two (1,65,00,000).
func FormatPrice(price int64) string {
	sign := ""
	if price < 0 {
		sign = "-"
		price = -price
	}

	digits := strconv.FormatInt(price, 10)
	if len(digits) <= 3 {
		return sign + "₹" + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}
