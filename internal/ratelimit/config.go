package ratelimit

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidPolicy = errors.New("invalid rate limit policy")

// LoadPolicy reads a YAML policy file of the form:
//
//	limits:
//	  global:
//	    - window: 1m
//	      max: 1000
//	  write:
//	    - window: 1m
//	      max: 30
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}

	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var policy Policy

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	if len(policy.Limits) == 0 {
		return nil, fmt.Errorf("%w: no limits defined", ErrInvalidPolicy)
	}

	for scope, limits := range policy.Limits {
		if scope == "" {
			return nil, fmt.Errorf("%w: empty scope name", ErrInvalidPolicy)
		}

		for _, l := range limits {
			if l.Max <= 0 || l.Window <= 0 {
				return nil, fmt.Errorf("%w: scope %s has non-positive limit %s", ErrInvalidPolicy, scope, l)
			}
		}
	}

	return &policy, nil
}
