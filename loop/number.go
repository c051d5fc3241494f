package loop

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Tag values are read the way the host player reads them: leading white
// space is skipped, the longest numeric prefix is used and anything after
// it is ignored. "44100 Hz" reads as 44100 and "1.5s" as 1.5.

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func splitSign(s string) (neg bool, rest string) {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[0] == '-', s[1:]
	}
	return false, s
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// parseInteger reads a base-10 integer prefix. It fails when there are no
// digits. The value is a float64 so long digit runs lose precision instead of
// failing; more digits than a float64 can hold read as infinity.
func parseInteger(s string) (float64, bool) {
	s = trimLeadingSpace(s)
	neg, rest := splitSign(s)
	n := countDigits(rest)
	if n == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(rest[:n], 64)
	if err != nil && !math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// parseDecimal reads a decimal floating-point prefix: digits with at most one
// '.', an optional exponent, or "Infinity". It fails when no digit is found.
func parseDecimal(s string) (float64, bool) {
	s = trimLeadingSpace(s)
	neg, rest := splitSign(s)

	if strings.HasPrefix(rest, "Infinity") {
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	end := countDigits(rest)
	mantissa := end
	if end < len(rest) && rest[end] == '.' {
		frac := countDigits(rest[end+1:])
		mantissa += frac
		end += 1 + frac
	}
	if mantissa == 0 {
		return 0, false
	}

	if end < len(rest) && (rest[end] == 'e' || rest[end] == 'E') {
		exp := end + 1
		if exp < len(rest) && (rest[exp] == '+' || rest[exp] == '-') {
			exp++
		}
		if n := countDigits(rest[exp:]); n > 0 {
			end = exp + n
		}
	}

	v, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil && !math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
