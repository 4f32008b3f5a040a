// Package idresolver maps a client-visible htsget id to the storage key
// the core resolver reads the format's data/index/gzi files under. It
// is deliberately kept outside the core htsget package: the core only
// ever sees a post-mapping key, never a client id or a regex.
package idresolver

import (
	"fmt"
	"regexp"
)

// Rule compiles one id-matching pattern with its substitution template.
// Substitution uses Go's regexp replacement syntax ($0 for the whole
// match, $1.. for capture groups), matching the $0-style substitution
// original_source's RegexResolver exposes.
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`

	re *regexp.Regexp
}

// compile lazily builds the Rule's regexp, caching it on the Rule.
func (r *Rule) compile() (*regexp.Regexp, error) {
	if r.re != nil {
		return r.re, nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("idresolver: compile pattern %q: %w", r.Pattern, err)
	}
	r.re = re
	return re, nil
}

// Resolver tries a list of Rules in order, returning the storage key
// produced by the first rule whose pattern matches id.
type Resolver struct {
	Rules []Rule
}

// NewResolver validates and wraps rules into a Resolver.
func NewResolver(rules []Rule) (*Resolver, error) {
	for i := range rules {
		if _, err := rules[i].compile(); err != nil {
			return nil, err
		}
	}
	return &Resolver{Rules: rules}, nil
}

// Resolve returns the storage key for id, and whether any rule matched.
func (r *Resolver) Resolve(id string) (string, bool) {
	for i := range r.Rules {
		rule := &r.Rules[i]
		re, err := rule.compile()
		if err != nil {
			continue
		}
		if !re.MatchString(id) {
			continue
		}
		return re.ReplaceAllString(id, rule.Replacement), true
	}
	return "", false
}
