// Package rational provides a small reduced-fraction value type.
//
// Unlike math/big.Rat it is a plain comparable struct, so it can key maps
// (the time-signature histogram relies on that) and compare with ==.
package rational

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is an always-reduced fraction with a positive denominator.
// The zero value is not valid; use New.
type Rational struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// New returns the reduced form of num/den. den must not be zero.
func New(num, den int) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("rational: zero denominator in %d/%d", num, den)
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Rational{Num: num, Den: den}, nil
}

// MustNew is New for hardcoded values.
func MustNew(num, den int) Rational {
	r, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

// Parse reads a "num/den" string, e.g. "3/4".
func Parse(s string) (Rational, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rational{}, fmt.Errorf("rational: %q is not of the form num/den", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Rational{}, fmt.Errorf("rational: bad numerator in %q: %w", s, err)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return Rational{}, fmt.Errorf("rational: bad denominator in %q: %w", s, err)
	}
	return New(n, d)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
