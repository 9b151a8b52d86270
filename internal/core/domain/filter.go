package domain

import "strings"

// Filter returns the cars whose name or model contains query (case-insensitive)
// and whose fuel type equals fuel, preserving input order. An empty query and
// the FuelAll selector match everything.
func Filter(cars []Car, query, fuel string) []Car {
	q := strings.ToLower(query)

	out := make([]Car, 0, len(cars))
	for _, c := range cars {
		if matches(c, q, fuel) {
			out = append(out, c)
		}
	}
	return out
}

// matches is the inclusion rule of Filter. query must already be lower-cased.
func matches(c Car, query, fuel string) bool {
	if fuel != FuelAll && string(c.FuelType) != fuel {
		return false
	}
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(strings.ToLower(c.Model), query)
}
