package services

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/mock"
)

func propertyParams() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	return parameters
}

func TestProperty_AnalysisSaveThenGet(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("get returns exactly what was saved last", prop.ForAll(
		func(first, category string, texts []string) bool {
			ctx := context.Background()
			svc := NewAnalysisCacheService(newTestRecords())
			reminders := make([]Reminder, 0, len(texts))
			for _, tx := range texts {
				reminders = append(reminders, Reminder{Text: tx})
			}
			if err := svc.Save(ctx, "e", first, nil); err != nil {
				return false
			}
			if err := svc.Save(ctx, "e", category, reminders); err != nil {
				return false
			}
			rec, ok := svc.Get(ctx, "e")
			if !ok || rec.Category != category || len(rec.Reminders) != len(reminders) {
				return false
			}
			for i := range reminders {
				if rec.Reminders[i] != reminders[i] {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
		gen.OneConstOf("Work", "Personal", "Newsletter", "Finance", "Travel", "Urgent", "Other", ""),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestProperty_AddRuleIdempotent(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("adding the same rule twice stores it once", prop.ForAll(
		func(ruleType string, value string) bool {
			ctx := context.Background()
			svc := NewPrivacyService(newTestRecords())
			a, err := svc.AddRule(ctx, RuleType(ruleType), value)
			if err != nil {
				return false
			}
			b, err := svc.AddRule(ctx, RuleType(ruleType), value)
			if err != nil {
				return false
			}
			return len(a) == 1 && len(b) == 1 && len(svc.ListRules(ctx)) == 1 && a[0] == b[0]
		},
		gen.OneConstOf("sender", "domain"),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestProperty_DomainRuleBlocksThenUnblocks(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("a domain rule blocks every local part until removed", prop.ForAll(
		func(local, domain string) bool {
			ctx := context.Background()
			svc := NewPrivacyService(newTestRecords())
			domain = domain + ".com"
			sender := local + "@" + domain
			if svc.IsBlocked(ctx, sender, DomainOf(sender)) {
				return false
			}
			if _, err := svc.AddRule(ctx, RuleDomain, domain); err != nil {
				return false
			}
			if !svc.IsBlocked(ctx, sender, DomainOf(sender)) {
				return false
			}
			if _, err := svc.RemoveRule(ctx, domain); err != nil {
				return false
			}
			return !svc.IsBlocked(ctx, sender, DomainOf(sender))
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestProperty_UniqueTagsAreDistinctValues(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("unique tags equal the distinct values of the mapping", prop.ForAll(
		func(tags []string) bool {
			ctx := context.Background()
			svc := NewTagService(newTestRecords())
			want := map[string]bool{}
			final := map[string]string{}
			for i, tag := range tags {
				id := string(rune('a' + i%7))
				if err := svc.Save(ctx, id, tag); err != nil {
					return false
				}
				final[id] = tag
			}
			for _, tag := range final {
				want[tag] = true
			}
			got := svc.ListUniqueTags(ctx)
			if !sort.StringsAreSorted(got) || len(got) != len(want) {
				return false
			}
			for _, tag := range got {
				if !want[tag] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("Work", "Finance", "Travel", "Other")),
	))

	properties.TestingRun(t)
}

func TestProperty_RemindersGetDistinctIDs(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("n adds give n ids and removing one leaves the rest", prop.ForAll(
		func(n int, pick int) bool {
			ctx := context.Background()
			svc := NewReminderService(newTestRecords())
			ids := map[string]bool{}
			var order []string
			for i := 0; i < n; i++ {
				r, err := svc.Add(ctx, "e", "same text", "")
				if err != nil || ids[r.ID] {
					return false
				}
				ids[r.ID] = true
				order = append(order, r.ID)
			}
			victim := order[pick%n]
			if err := svc.Remove(ctx, victim); err != nil {
				return false
			}
			left := svc.List(ctx)
			if len(left) != n-1 {
				return false
			}
			for _, r := range left {
				if r.ID == victim {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_ResponseWithoutArrayYieldsNoReminders(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("model output without brackets becomes an empty list", prop.ForAll(
		func(text string) bool {
			text = strings.NewReplacer("[", "", "]", "").Replace(text)
			provider := &MockLLMProvider{}
			provider.On("Generate", mock.Anything, mock.Anything).Return(text, nil)
			service := NewAIService(provider, nil, nil)

			got, st := service.DetectReminders(context.Background(), "content")
			return got != nil && len(got) == 0 && st == AIStatusFailed
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
