package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a tally decoded leniently from upstream JSON.
// Upstream feeds mix numbers, numeric strings, floats and nulls for the same
// field; anything that does not parse decodes as 0 instead of failing the
// whole payload.
type Count int

// UnmarshalJSON accepts 12, 12.7, "12", " 12 ", "12.7", null and garbage.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*c = 0
			return nil
		}
		*c = Count(parseIntOrZero(s))
		return nil
	}
	*c = Count(parseIntOrZero(string(data)))
	return nil
}

// Int returns the count as a plain int.
func (c Count) Int() int { return int(c) }

// parseIntOrZero parses a string as an integer, truncating decimals.
// Returns 0 when the value is empty, not numeric, or outside the int range.
func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	// Out-of-range values have no int representation; treat them as garbage.
	if err != nil || math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return 0
	}
	return int(f)
}
