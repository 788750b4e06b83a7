// Package tier implements Component C: the Tier-Progression engine (spec
// §4.C). It classifies the user's current tier, selects focus tags, and
// applies the time-based tier escape hatch. Grounded on the teacher's
// tier-threshold selection in user-service/internal/service/tier_service.go,
// generalized to the spec's relationship-weighted seeding rule.
package tier

import (
	"math"
	"sort"
	"time"

	"adaptive-engine/internal/models"
)

// Order is the fixed tier progression sequence (spec §4.C).
var Order = []models.TierClassification{
	models.CoreConcept,
	models.FundamentalTechnique,
	models.AdvancedTechnique,
}

// MasteredFractionThreshold is the "tier complete" bar (spec §4.C: a tier
// counts as cleared once mastered_fraction >= ceil(tier_size*0.8)/tier_size).
const MasteredFractionThreshold = 0.80

// TierEscapeDays and TierEscapeMasteredFraction are the time-based escape
// hatch thresholds (spec §4.C).
const (
	TierEscapeDays             = 30
	TierEscapeMasteredFraction = 0.60
)

// MaxFocusTags is the cap on returned focus tags (spec §4.C).
const MaxFocusTags = 5

// Result is the per-session tier snapshot the Adaptive Session Settings
// component consumes.
type Result struct {
	Tier              models.TierClassification
	MasteredTags      []string
	AllTagsInTier      []string
	FocusTags         []string
	TierAdvanced      bool
	MasteredFraction  float64
}

// Compute runs the full tier-progression decision for one start_session
// call. relationships is the full TagRelationship catalog; mastery is the
// user's TagMastery rows keyed by tag; tierStartedAt is the SessionState's
// recorded tier-start timestamp.
func Compute(relationships []models.TagRelationship, mastery map[string]models.TagMastery, tierStartedAt time.Time, now time.Time) Result {
	byTier := groupByTier(relationships)

	if len(mastery) == 0 {
		return Result{
			Tier:         models.CoreConcept,
			AllTagsInTier: tagNames(byTier[models.CoreConcept]),
			FocusTags:    topOnboardingTags(byTier[models.CoreConcept]),
		}
	}

	current := currentTier(byTier, mastery)
	tierTags := byTier[current]
	masteredTags, allTags, fraction := tierStats(tierTags, mastery)

	advanced := false
	if now.Sub(tierStartedAt).Hours()/24.0 >= TierEscapeDays && fraction >= TierEscapeMasteredFraction {
		next := current.Next()
		if next != current {
			current = next
			tierTags = byTier[current]
			masteredTags, allTags, fraction = tierStats(tierTags, mastery)
			advanced = true
		}
	}

	focus := focusTags(tierTags, mastery, relationships)

	return Result{
		Tier:             current,
		MasteredTags:     masteredTags,
		AllTagsInTier:     allTags,
		FocusTags:        focus,
		TierAdvanced:     advanced,
		MasteredFraction: fraction,
	}
}

func groupByTier(relationships []models.TagRelationship) map[models.TierClassification][]models.TagRelationship {
	out := map[models.TierClassification][]models.TagRelationship{}
	for _, r := range relationships {
		out[r.Classification] = append(out[r.Classification], r)
	}
	return out
}

func tagNames(tags []models.TagRelationship) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	sort.Strings(names)
	return names
}

// currentTier selects the lowest tier whose mastered fraction is still
// below the threshold; if every tier has cleared the threshold, the
// topmost tier is returned (spec §4.C).
func currentTier(byTier map[models.TierClassification][]models.TagRelationship, mastery map[string]models.TagMastery) models.TierClassification {
	for _, tier := range Order {
		_, _, fraction := tierStats(byTier[tier], mastery)
		if fraction < MasteredFractionThreshold {
			return tier
		}
	}
	return Order[len(Order)-1]
}

// tierStats returns the mastered tag names, all tag names, and the
// mastered fraction for a tier, using ceil(tier_size*0.8) as the
// mastered-count bar (spec §4.C).
func tierStats(tierTags []models.TagRelationship, mastery map[string]models.TagMastery) ([]string, []string, float64) {
	all := tagNames(tierTags)
	if len(all) == 0 {
		return nil, all, 1.0
	}

	mastered := make([]string, 0, len(all))
	for _, tag := range all {
		if m, ok := mastery[tag]; ok && m.Mastered {
			mastered = append(mastered, tag)
		}
	}

	fraction := float64(len(mastered)) / float64(len(all))
	return mastered, all, fraction
}

// focusTags returns up to MaxFocusTags unmastered tags in tierTags,
// sorted by success_rate descending, seeding new tags by relationship
// weight to already-mastered tags when the tier has too few unmastered
// members (spec §4.C).
func focusTags(tierTags []models.TagRelationship, mastery map[string]models.TagMastery, allRelationships []models.TagRelationship) []string {
	type candidate struct {
		tag         string
		successRate float64
	}
	var unmastered []candidate
	var masteredInTier []string

	for _, t := range tierTags {
		m, known := mastery[t.Tag]
		if known && m.Mastered {
			masteredInTier = append(masteredInTier, t.Tag)
			continue
		}
		rate := 0.0
		if known {
			rate = m.SuccessRate()
		}
		unmastered = append(unmastered, candidate{tag: t.Tag, successRate: rate})
	}

	sort.SliceStable(unmastered, func(i, j int) bool {
		return unmastered[i].successRate > unmastered[j].successRate
	})

	focus := make([]string, 0, MaxFocusTags)
	for _, c := range unmastered {
		if len(focus) >= MaxFocusTags {
			break
		}
		focus = append(focus, c.tag)
	}

	if len(focus) >= MaxFocusTags {
		return focus
	}

	seeded := seedByRelationshipWeight(allRelationships, mastery, masteredInTier, MaxFocusTags-len(focus))
	return append(focus, seeded...)
}

// seedByRelationshipWeight picks up to n tags not yet present in mastery,
// ranked by summed relationship weight to masteredTags (spec §4.C).
func seedByRelationshipWeight(all []models.TagRelationship, mastery map[string]models.TagMastery, masteredTags []string, n int) []string {
	if n <= 0 {
		return nil
	}
	masteredSet := map[string]bool{}
	for _, t := range masteredTags {
		masteredSet[t] = true
	}
	byTag := map[string]models.TagRelationship{}
	for _, r := range all {
		byTag[r.Tag] = r
	}

	type candidate struct {
		tag    string
		weight float64
	}
	var candidates []candidate
	for _, r := range all {
		if _, known := mastery[r.Tag]; known {
			continue
		}
		weight := 0.0
		for _, masteredTag := range masteredTags {
			weight += r.Related[masteredTag]
			if mr, ok := byTag[masteredTag]; ok {
				weight += mr.Related[r.Tag]
			}
		}
		if weight > 0 {
			candidates = append(candidates, candidate{tag: r.Tag, weight: weight})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})

	out := make([]string, 0, n)
	for _, c := range candidates {
		if len(out) >= n {
			break
		}
		out = append(out, c.tag)
	}
	return out
}

// topOnboardingTags returns the top-5 Core-Concept tags by summed
// relationship weight (spec §4.C onboarding rule).
func topOnboardingTags(coreTags []models.TagRelationship) []string {
	type candidate struct {
		tag    string
		weight float64
	}
	candidates := make([]candidate, 0, len(coreTags))
	for _, t := range coreTags {
		sum := 0.0
		for _, w := range t.Related {
			sum += w
		}
		candidates = append(candidates, candidate{tag: t.Tag, weight: sum})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		return candidates[i].tag < candidates[j].tag
	})

	n := int(math.Min(float64(MaxFocusTags), float64(len(candidates))))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, candidates[i].tag)
	}
	return out
}
