package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/inboxpilot/internal/kv"
)

const recordPrivacyRules = "privacy-rules"

// PrivacyServiceImpl implements PrivacyService
type PrivacyServiceImpl struct {
	records *kv.Records
	mu      sync.Mutex
}

// NewPrivacyService creates a new privacy rule service
func NewPrivacyService(records *kv.Records) *PrivacyServiceImpl {
	return &PrivacyServiceImpl{records: records}
}

// ParseRuleType validates a raw rule type
func ParseRuleType(raw string) (RuleType, error) {
	switch t := RuleType(strings.ToLower(strings.TrimSpace(raw))); t {
	case RuleSender, RuleDomain:
		return t, nil
	default:
		return "", fmt.Errorf("unknown rule type %q: %w", raw, ErrInvalidInput)
	}
}

func (s *PrivacyServiceImpl) ListRules(ctx context.Context) []PrivacyRule {
	var rules []PrivacyRule
	if !s.records.Get(ctx, recordPrivacyRules, &rules) || rules == nil {
		return []PrivacyRule{}
	}
	return rules
}

// AddRule appends a block rule unless one with the same type and value exists
func (s *PrivacyServiceImpl) AddRule(ctx context.Context, ruleType RuleType, value string) ([]PrivacyRule, error) {
	ruleType, err := ParseRuleType(string(ruleType))
	if err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("rule value cannot be empty: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rules := s.ListRules(ctx)
	for _, r := range rules {
		if r.Type == ruleType && r.Value == value {
			return rules, nil
		}
	}
	rules = append(rules, PrivacyRule{Type: ruleType, Value: value, Action: ActionBlockAI})
	if err := s.records.Set(ctx, recordPrivacyRules, rules); err != nil {
		return nil, fmt.Errorf("failed to save privacy rule: %w", err)
	}
	return rules, nil
}

// RemoveRule drops every rule whose value matches, whatever its type
func (s *PrivacyServiceImpl) RemoveRule(ctx context.Context, value string) ([]PrivacyRule, error) {
	return s.remove(ctx, func(r PrivacyRule) bool { return r.Value == value })
}

// RemoveTypedRule drops only the rule with the given type and value
func (s *PrivacyServiceImpl) RemoveTypedRule(ctx context.Context, ruleType RuleType, value string) ([]PrivacyRule, error) {
	ruleType, err := ParseRuleType(string(ruleType))
	if err != nil {
		return nil, err
	}
	return s.remove(ctx, func(r PrivacyRule) bool { return r.Type == ruleType && r.Value == value })
}

func (s *PrivacyServiceImpl) remove(ctx context.Context, match func(PrivacyRule) bool) ([]PrivacyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules := s.ListRules(ctx)
	kept := make([]PrivacyRule, 0, len(rules))
	for _, r := range rules {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rules) {
		return rules, nil
	}
	if err := s.records.Set(ctx, recordPrivacyRules, kept); err != nil {
		return nil, fmt.Errorf("failed to remove privacy rule: %w", err)
	}
	return kept, nil
}

// IsBlocked reports whether any rule keeps this sender away from the model.
// Sender rules match by substring of the address; domain rules match the
// domain exactly or the address suffix "@value".
func (s *PrivacyServiceImpl) IsBlocked(ctx context.Context, senderAddress, domain string) bool {
	return matchesAnyRule(s.ListRules(ctx), senderAddress, domain)
}

func matchesAnyRule(rules []PrivacyRule, senderAddress, domain string) bool {
	for _, r := range rules {
		if r.Value == "" {
			continue
		}
		switch r.Type {
		case RuleSender:
			if strings.Contains(senderAddress, r.Value) {
				return true
			}
		case RuleDomain:
			if domain == r.Value || strings.HasSuffix(senderAddress, "@"+r.Value) {
				return true
			}
		}
	}
	return false
}

// DomainOf returns the part of an address after the first "@", or "" when there is none
func DomainOf(address string) string {
	if i := strings.Index(address, "@"); i >= 0 {
		return address[i+1:]
	}
	return ""
}
