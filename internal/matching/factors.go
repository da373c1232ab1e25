package matching

import (
	"sort"
	"strings"

	"roommate-service/internal/models"
)

// neutral is the credit a factor earns when either side left it unset.
const neutral = 0.5

var levelRank = map[string]int{
	models.LevelLow:    0,
	models.LevelMedium: 1,
	models.LevelHigh:   2,
}

// flexible sits between the two fixed schedules.
var sleepRank = map[string]int{
	models.SleepEarlyBird: 0,
	models.SleepFlexible:  1,
	models.SleepNightOwl:  2,
}

// budgetCredit is |overlap| / |union| of two closed integer ranges.
func budgetCredit(a, b *models.Preferences) float64 {
	if !hasBudget(a) || !hasBudget(b) {
		return neutral
	}
	aMin, aMax := *a.BudgetMin, *a.BudgetMax
	bMin, bMax := *b.BudgetMin, *b.BudgetMax

	overlap := min(aMax, bMax) - max(aMin, bMin) + 1
	if overlap <= 0 {
		return 0
	}
	union := max(aMax, bMax) - min(aMin, bMin) + 1
	return float64(overlap) / float64(union)
}

func hasBudget(p *models.Preferences) bool {
	return p != nil && p.BudgetMin != nil && p.BudgetMax != nil
}

// ordinalCredit gives full credit for equal ranks, half for adjacent ranks.
func ordinalCredit(ranks map[string]int, a, b string) float64 {
	ra, okA := ranks[a]
	rb, okB := ranks[b]
	if !okA || !okB {
		return neutral
	}
	switch diff := ra - rb; {
	case diff == 0:
		return 1
	case diff == 1 || diff == -1:
		return 0.5
	default:
		return 0
	}
}

func boolCredit(a, b *bool) float64 {
	if a == nil || b == nil {
		return neutral
	}
	if *a == *b {
		return 1
	}
	return 0
}

func cityCredit(a, b string) float64 {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return neutral
	}
	if strings.EqualFold(a, b) {
		return 1
	}
	return 0
}

// interestCredit is the Jaccard index of two tag sets. A nil set was never
// saved and is neutral; two saved empty sets share nothing and score 0.
func interestCredit(a, b []string) (float64, []string) {
	if a == nil || b == nil {
		return neutral, nil
	}
	setA := tagSet(a)
	setB := tagSet(b)
	union := len(setA)
	shared := []string{}
	for tag := range setB {
		if _, ok := setA[tag]; ok {
			shared = append(shared, tag)
		} else {
			union++
		}
	}
	if union == 0 {
		return 0, shared
	}
	sort.Strings(shared)
	return float64(len(shared)) / float64(union), shared
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
