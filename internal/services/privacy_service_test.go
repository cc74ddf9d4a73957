package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivacyService_DomainRuleBlocksAndUnblocks(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())

	_, err := svc.AddRule(ctx, RuleDomain, "spam.com")
	require.NoError(t, err)
	assert.True(t, svc.IsBlocked(ctx, "a@spam.com", "spam.com"))

	_, err = svc.RemoveRule(ctx, "spam.com")
	require.NoError(t, err)
	assert.False(t, svc.IsBlocked(ctx, "a@spam.com", "spam.com"))
}

func TestPrivacyService_AddRuleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())

	first, err := svc.AddRule(ctx, RuleSender, "boss@corp.example")
	require.NoError(t, err)
	second, err := svc.AddRule(ctx, RuleSender, "boss@corp.example")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []PrivacyRule{{Type: RuleSender, Value: "boss@corp.example", Action: ActionBlockAI}}, svc.ListRules(ctx))

	// same value under another type is a distinct rule
	rules, err := svc.AddRule(ctx, RuleDomain, "boss@corp.example")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestPrivacyService_RemoveRuleIgnoresType(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())
	_, _ = svc.AddRule(ctx, RuleSender, "example.org")
	_, _ = svc.AddRule(ctx, RuleDomain, "example.org")
	_, _ = svc.AddRule(ctx, RuleDomain, "keep.example")

	rules, err := svc.RemoveRule(ctx, "example.org")
	require.NoError(t, err)
	assert.Equal(t, []PrivacyRule{{Type: RuleDomain, Value: "keep.example", Action: ActionBlockAI}}, rules)
}

func TestPrivacyService_RemoveTypedRule(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())
	_, _ = svc.AddRule(ctx, RuleSender, "example.org")
	_, _ = svc.AddRule(ctx, RuleDomain, "example.org")

	rules, err := svc.RemoveTypedRule(ctx, RuleSender, "example.org")
	require.NoError(t, err)
	assert.Equal(t, []PrivacyRule{{Type: RuleDomain, Value: "example.org", Action: ActionBlockAI}}, rules)

	unchanged, err := svc.RemoveTypedRule(ctx, RuleSender, "absent")
	require.NoError(t, err)
	assert.Equal(t, rules, unchanged)
}

func TestPrivacyService_Matching(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())
	_, _ = svc.AddRule(ctx, RuleSender, "newsletter@")
	_, _ = svc.AddRule(ctx, RuleDomain, "bank.example")

	tests := []struct {
		sender  string
		blocked bool
	}{
		{"newsletter@ads.example", true},
		{"alerts@bank.example", true},
		{"alerts@mail.bank.example", false},
		{"friend@home.example", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.blocked, svc.IsBlocked(ctx, tt.sender, DomainOf(tt.sender)), tt.sender)
	}
	// the domain argument alone is enough for a domain rule
	assert.True(t, svc.IsBlocked(ctx, "no-at-sign", "bank.example"))
}

func TestPrivacyService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())

	_, err := svc.AddRule(ctx, RuleType("subject"), "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddRule(ctx, RuleDomain, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, svc.ListRules(ctx))
}

func TestPrivacyService_NormalizesRuleType(t *testing.T) {
	ctx := context.Background()
	svc := NewPrivacyService(newTestRecords())

	rules, err := svc.AddRule(ctx, RuleType(" Domain"), "spam.com")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, RuleDomain, rules[0].Type)
	assert.True(t, svc.IsBlocked(ctx, "a@spam.com", "spam.com"))

	rules, err = svc.AddRule(ctx, RuleDomain, "spam.com")
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	_, err = svc.RemoveTypedRule(ctx, RuleType("label"), "spam.com")
	assert.ErrorIs(t, err, ErrInvalidInput)

	rules, err = svc.RemoveTypedRule(ctx, RuleType("DOMAIN "), "spam.com")
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.False(t, svc.IsBlocked(ctx, "a@spam.com", "spam.com"))
}

func TestParseRuleType(t *testing.T) {
	rt, err := ParseRuleType(" Domain ")
	require.NoError(t, err)
	assert.Equal(t, RuleDomain, rt)
	_, err = ParseRuleType("label")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "spam.com", DomainOf("a@spam.com"))
	assert.Equal(t, "b@c", DomainOf("a@b@c"))
	assert.Equal(t, "", DomainOf("nobody"))
}
