package timesig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/davidorman/scoremend/rational"
)

// Policy decides whether an inferred signature is musically plausible
// enough to overwrite a recognized one. It works on reduced values, so
// 6/8 and 3/4 are the same entry.
type Policy struct {
	allowed map[rational.Rational]bool
}

// Acceptable reports whether r is on the allow-list.
func (p Policy) Acceptable(r rational.Rational) bool {
	return p.allowed[r]
}

// DefaultPolicy allows the usual simple and compound meters.
func DefaultPolicy() Policy {
	return policyOf(
		"2/2", "3/2",
		"2/4", "3/4", "4/4", "5/4", "6/4", "7/4",
		"3/8", "5/8", "6/8", "7/8", "9/8", "12/8",
	)
}

func policyOf(sigs ...string) Policy {
	p := Policy{allowed: make(map[rational.Rational]bool, len(sigs))}
	for _, s := range sigs {
		r, err := rational.Parse(s)
		if err != nil {
			panic(err)
		}
		p.allowed[r] = true
	}
	return p
}

type policyFile struct {
	Signatures []string `yaml:"signatures"`
}

// LoadPolicy reads an allow-list from a YAML file of the form:
//
//	signatures:
//	  - "2/4"
//	  - "6/8"
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}

	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if len(f.Signatures) == 0 {
		return Policy{}, fmt.Errorf("policy %s lists no signatures", path)
	}

	p := Policy{allowed: make(map[rational.Rational]bool, len(f.Signatures))}
	for _, s := range f.Signatures {
		r, err := rational.Parse(s)
		if err != nil {
			return Policy{}, fmt.Errorf("policy %s: %w", path, err)
		}
		p.allowed[r] = true
	}
	return p, nil
}
