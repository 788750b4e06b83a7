// Package ladder implements Component H: Pattern Ladders (spec §4.H). A
// pattern ladder is a per-tag ordered sequence of catalog problems with
// decay-annotated metadata; it regenerates once every entry has been
// attempted. Grounded on the teacher's per-tag problem queue builder in
// scheduler-service/internal/service/ladder_service.go.
package ladder

import (
	"sort"

	"adaptive-engine/internal/models"
)

// Generate builds a fresh PatternLadder for tag, sized per
// LadderSizeForRole (spec §4.H), selecting unattempted problems carrying
// the tag whose tags (the ladder tag included) are all in
// allowedClassifications when it is non-nil, ordered by
// difficulty distribution proportional to targetDistribution.
func Generate(
	tag string,
	userID string,
	candidates []models.Problem,
	attemptedLeetcodeIDs map[int]bool,
	decayScoreByLeetcodeID map[int]float64,
	connectionsByLeetcodeID map[int]int,
	allowedClassifications map[string]bool,
	isFocusTag, isTierTag bool,
	targetDistribution map[models.Difficulty]float64,
) models.PatternLadder {
	size := models.LadderSizeForRole(isFocusTag, isTierTag)

	eligible := make([]models.Problem, 0, len(candidates))
	for _, p := range candidates {
		if attemptedLeetcodeIDs[p.LeetcodeID] {
			continue
		}
		if !p.HasTag(tag) {
			continue
		}
		if allowedClassifications != nil && !allTagsAllowed(p.Tags, allowedClassifications) {
			continue
		}
		eligible = append(eligible, p)
	}

	ordered := orderByTargetDistribution(eligible, targetDistribution, size)

	entries := make([]models.LadderEntry, 0, len(ordered))
	for _, p := range ordered {
		entries = append(entries, models.LadderEntry{
			LeetcodeID:  p.LeetcodeID,
			Difficulty:  p.Difficulty,
			DecayScore:  decayScoreByLeetcodeID[p.LeetcodeID],
			Connections: connectionsByLeetcodeID[p.LeetcodeID],
		})
	}

	return models.PatternLadder{
		Tag:        tag,
		UserID:     userID,
		Problems:   entries,
		LadderSize: size,
	}
}

func allTagsAllowed(tags []string, allowed map[string]bool) bool {
	for _, t := range tags {
		if !allowed[t] {
			return false
		}
	}
	return true
}

// orderByTargetDistribution selects up to size problems from eligible,
// drawing from each difficulty band in proportion to targetDistribution
// (spec §4.H: "ordered by difficulty distribution proportional to the
// tag's target distribution"). Within a band, problems are ordered by
// ascending leetcode_id for determinism.
func orderByTargetDistribution(eligible []models.Problem, targetDistribution map[models.Difficulty]float64, size int) []models.Problem {
	byDifficulty := map[models.Difficulty][]models.Problem{}
	for _, p := range eligible {
		byDifficulty[p.Difficulty] = append(byDifficulty[p.Difficulty], p)
	}
	for d := range byDifficulty {
		sort.SliceStable(byDifficulty[d], func(i, j int) bool {
			return byDifficulty[d][i].LeetcodeID < byDifficulty[d][j].LeetcodeID
		})
	}

	if len(targetDistribution) == 0 {
		targetDistribution = map[models.Difficulty]float64{models.Easy: 0.34, models.Medium: 0.43, models.Hard: 0.23}
	}

	out := make([]models.Problem, 0, size)
	difficulties := []models.Difficulty{models.Easy, models.Medium, models.Hard}
	for _, d := range difficulties {
		want := int(float64(size)*targetDistribution[d] + 0.5)
		pool := byDifficulty[d]
		for i := 0; i < want && i < len(pool); i++ {
			out = append(out, pool[i])
		}
	}

	if len(out) >= size {
		return out[:size]
	}
	// Fill shortfall from any remaining eligible problems, by ascending id.
	used := map[int]bool{}
	for _, p := range out {
		used[p.LeetcodeID] = true
	}
	rest := make([]models.Problem, 0)
	for _, p := range eligible {
		if !used[p.LeetcodeID] {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].LeetcodeID < rest[j].LeetcodeID })
	for _, p := range rest {
		if len(out) >= size {
			break
		}
		out = append(out, p)
	}
	return out
}

// MarkAttempted applies an attempted leetcode_id to every ladder the
// problem belongs to and reports which ladders are now fully attempted
// and due for regeneration (spec §4.G step 6).
func MarkAttempted(ladders []models.PatternLadder, leetcodeID int) (changed []models.PatternLadder, readyForRegeneration []string) {
	for i := range ladders {
		if ladders[i].MarkAttempted(leetcodeID) {
			changed = append(changed, ladders[i])
		}
		if ladders[i].AllAttempted() {
			readyForRegeneration = append(readyForRegeneration, ladders[i].Tag)
		}
	}
	return changed, readyForRegeneration
}
