// Package assembler implements Component F: the Session Assembler (spec
// §4.F). It runs the strict priority pipeline — triggered bridge reviews,
// learning reviews, new problems, passive mastered reviews, fallback —
// producing at most session_length deduplicated problems. Grounded on
// the teacher's multi-stage session builder in
// scheduler-service/internal/service/session_service.go, generalized
// from its fixed "due + new" split to the spec's five-priority pipeline.
package assembler

import (
	"context"
	"math"
	"sort"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/models"
	"adaptive-engine/internal/ports"
	"adaptive-engine/internal/relgraph"
)

// Input bundles every precomputed ingredient the pipeline needs. Fields
// that require a store read (scheduler due-sets, attempted problems) are
// computed by the caller ahead of time; only Priority 3's catalog fetch
// is performed inline, since its candidate pool depends on how many
// slots the earlier priorities already filled.
type Input struct {
	UserID               string
	SessionLength        int
	CurrentDifficultyCap models.Difficulty
	CurrentAllowedTags   []string
	Onboarding           bool
	RecentAccuracy       float64

	RecentFailedLeetcodeIDs []int
	MasteredUserProblems    []models.UserProblem // box 6-8
	ProblemGraph            *relgraph.ProblemGraph

	LearningDue []models.UserProblem // box 1-5, scheduler-ordered
	MasteredDue []models.UserProblem // box 6-8, scheduler-ordered

	AttemptedFallbackPool []models.UserProblem // all attempted, scheduler-ordered, for the last-resort fallback

	ProblemsByLeetcodeID map[int]models.Problem

	TagMasteryByTag        map[string]models.TagMastery
	DecayScoreByLeetcodeID  map[int]float64
	AlreadyAttemptedIDs     map[int]bool
	TagGraph                *relgraph.TagGraph
}

// pipeline carries the in-progress session and dedup state across
// priority stages.
type pipeline struct {
	session *models.Session
	seen    map[int]bool
	limit   int
}

func newPipeline(userID string, limit int) *pipeline {
	return &pipeline{
		session: &models.Session{
			UserID:   userID,
			Status:   models.StatusDraft,
			Problems: make([]models.SessionProblem, 0, limit),
		},
		seen:  map[int]bool{},
		limit: limit,
	}
}

func (p *pipeline) remaining() int { return p.limit - len(p.session.Problems) }
func (p *pipeline) full() bool     { return p.limit > 0 && len(p.session.Problems) >= p.limit }

func (p *pipeline) add(problem models.Problem, reason models.SelectionReason) bool {
	if p.full() || p.seen[problem.LeetcodeID] {
		return false
	}
	p.seen[problem.LeetcodeID] = true
	p.session.Problems = append(p.session.Problems, models.SessionProblem{Problem: problem, SelectionReason: reason})
	return true
}

// Build runs the pipeline and returns a Session with status=draft (the
// caller assigns session_id/date and persists). A total assembly failure
// returns an empty-problems session rather than an error (spec §7).
func Build(ctx context.Context, catalog ports.ProblemCatalog, cfg config.ScoringConfig, in Input, log *logger.Logger) *models.Session {
	p := newPipeline(in.UserID, in.SessionLength)

	if err := ctx.Err(); err != nil {
		return p.session
	}

	priority1TriggeredReviews(p, in, cfg)
	priority2LearningReviews(p, in, cfg)
	priority3NewProblems(ctx, p, catalog, cfg, in, log)
	priority4PassiveMastered(p, in)
	fallback(p, in)

	applyGuardRail(p.session, in, cfg)

	return p.session
}

func priority1TriggeredReviews(p *pipeline, in Input, cfg config.ScoringConfig) {
	if in.Onboarding || in.ProblemGraph == nil || len(in.RecentFailedLeetcodeIDs) == 0 {
		return
	}

	type candidate struct {
		problem  models.Problem
		strength float64
	}
	var candidates []candidate
	for _, mastered := range in.MasteredUserProblems {
		strength := in.ProblemGraph.AggregateWeight(mastered.LeetcodeID, in.RecentFailedLeetcodeIDs)
		if strength < cfg.TriggeredReviewThreshold {
			continue
		}
		problem, ok := in.ProblemsByLeetcodeID[mastered.LeetcodeID]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{problem: problem, strength: strength})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].strength > candidates[j].strength })

	max := cfg.TriggeredReviewMax
	for i, c := range candidates {
		if i >= max {
			break
		}
		p.add(c.problem, models.SelectionReason{
			Type:              models.ReasonTriggeredReview,
			Reason:            "strongly related to a recent failure",
			TriggeredBy:       nearestTrigger(in.ProblemGraph, c.problem.LeetcodeID, in.RecentFailedLeetcodeIDs),
			AggregateStrength: c.strength,
		})
	}
}

// nearestTrigger reports which failed problem contributed the most edge
// weight to candidateID, for the selection_reason's trigger metadata.
func nearestTrigger(g *relgraph.ProblemGraph, candidateID int, failedIDs []int) int {
	best, bestWeight := 0, -1.0
	for _, failed := range failedIDs {
		w := g.AggregateWeight(candidateID, []int{failed})
		if w > bestWeight {
			best, bestWeight = failed, w
		}
	}
	return best
}

func priority2LearningReviews(p *pipeline, in Input, cfg config.ScoringConfig) {
	if in.Onboarding {
		return
	}
	remaining := p.remaining()
	if remaining <= 0 {
		return
	}
	slots := int(math.Ceil(float64(remaining) * cfg.LearningReviewFraction))

	count := 0
	for _, up := range in.LearningDue {
		if count >= slots {
			break
		}
		problem, ok := in.ProblemsByLeetcodeID[up.LeetcodeID]
		if !ok {
			continue
		}
		if p.add(problem, models.SelectionReason{Type: models.ReasonLearningReview, Reason: "due for learning review"}) {
			count++
		}
	}
}

func priority3NewProblems(ctx context.Context, p *pipeline, catalog ports.ProblemCatalog, cfg config.ScoringConfig, in Input, log *logger.Logger) {
	if ctx.Err() != nil {
		return
	}
	needed := p.remaining()
	if needed <= 0 || catalog == nil {
		return
	}

	fetchLimit := needed * cfg.NewProblemFetchMultiplier
	if fetchLimit > cfg.NewProblemFetchCap {
		fetchLimit = cfg.NewProblemFetchCap
	}

	excludeIDs := make([]int, 0, len(in.AlreadyAttemptedIDs))
	for id := range in.AlreadyAttemptedIDs {
		excludeIDs = append(excludeIDs, id)
	}

	candidates, err := catalog.ListWithFilter(ctx, in.CurrentAllowedTags, in.CurrentDifficultyCap, excludeIDs, fetchLimit)
	if err != nil {
		if log != nil {
			log.WithContext(ctx).WithError(err).Warn("priority 3 new-problem fetch failed, falling back to empty candidate set")
		}
		return
	}

	if in.Onboarding {
		for _, c := range candidates {
			if p.remaining() <= 0 {
				break
			}
			p.add(c, models.SelectionReason{Type: models.ReasonNew, Reason: "onboarding catalog order"})
		}
		return
	}

	scored := scoreCandidates(candidates, in, cfg)
	for _, c := range scored {
		if p.remaining() <= 0 {
			break
		}
		p.add(c.problem, models.SelectionReason{Type: models.ReasonNew, Reason: "optimal-path score"})
	}
}

type scoredProblem struct {
	problem models.Problem
	score   float64
}

// scoreCandidates ranks Priority 3 candidates by the configurable
// optimal-path function: weighted sum of mastery gap (1 - best tag
// mastery rate), decay staleness, and aggregate connection strength to
// the user's allowed tags (spec §9 Open Question).
func scoreCandidates(candidates []models.Problem, in Input, cfg config.ScoringConfig) []scoredProblem {
	out := make([]scoredProblem, 0, len(candidates))
	for _, p := range candidates {
		masteryGap := 1.0
		for _, tag := range p.Tags {
			if m, ok := in.TagMasteryByTag[tag]; ok {
				gap := 1.0 - m.SuccessRate()
				if gap < masteryGap {
					masteryGap = gap
				}
			}
		}
		decayComponent := 1.0
		if score, ok := in.DecayScoreByLeetcodeID[p.LeetcodeID]; ok {
			decayComponent = 1.0 - score
		}
		connection := connectionStrength(p, in)

		score := cfg.WeightMasteryGap*masteryGap + cfg.WeightDecay*decayComponent + cfg.WeightConnectionStrength*connection
		out = append(out, scoredProblem{problem: p, score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].problem.LeetcodeID < out[j].problem.LeetcodeID
	})
	return out
}

func connectionStrength(p models.Problem, in Input) float64 {
	if in.TagGraph == nil {
		return 0
	}
	total := 0.0
	for _, tag := range p.Tags {
		for _, allowed := range in.CurrentAllowedTags {
			if tag == allowed {
				continue
			}
			for _, n := range in.TagGraph.Neighbors(allowed) {
				if n.Tag == tag {
					total += n.Weight
				}
			}
		}
	}
	return total
}

func priority4PassiveMastered(p *pipeline, in Input) {
	if p.remaining() <= 0 {
		return
	}
	for _, up := range in.MasteredDue {
		if p.remaining() <= 0 {
			break
		}
		problem, ok := in.ProblemsByLeetcodeID[up.LeetcodeID]
		if !ok {
			continue
		}
		p.add(problem, models.SelectionReason{Type: models.ReasonPassiveMastered, Reason: "mastered review fill"})
	}
}

func fallback(p *pipeline, in Input) {
	if p.remaining() <= 0 {
		return
	}
	for _, up := range in.AttemptedFallbackPool {
		if p.remaining() <= 0 {
			break
		}
		problem, ok := in.ProblemsByLeetcodeID[up.LeetcodeID]
		if !ok {
			continue
		}
		p.add(problem, models.SelectionReason{Type: models.ReasonFallback, Reason: "fallback fill from attempted pool"})
	}
}

// applyGuardRail implements spec §4.F's safety guard rail: when recent
// accuracy is poor and Hard problems exceed MaxHardFraction of the
// session, the excess Hards are removed from the tail and replaced from
// related-tag pattern ladders at a softer difficulty.
func applyGuardRail(session *models.Session, in Input, cfg config.ScoringConfig) {
	if in.RecentAccuracy > 0.4 {
		return
	}
	maxHard := int(math.Floor(float64(len(session.Problems)) * cfg.MaxHardFraction))

	hardIndices := make([]int, 0)
	for i, sp := range session.Problems {
		if sp.Problem.Difficulty == models.Hard {
			hardIndices = append(hardIndices, i)
		}
	}
	if len(hardIndices) <= maxHard {
		return
	}

	excess := hardIndices[maxHard:]
	seen := map[int]bool{}
	for _, sp := range session.Problems {
		seen[sp.Problem.LeetcodeID] = true
	}

	replacements := softerReplacements(session, in, len(excess), seen)

	// Drop the excess (later) Hard entries by index into a new slice, then
	// append the replacements.
	toRemove := map[int]bool{}
	for _, i := range excess {
		toRemove[i] = true
	}
	kept := make([]models.SessionProblem, 0, len(session.Problems))
	for i, sp := range session.Problems {
		if !toRemove[i] {
			kept = append(kept, sp)
		}
	}
	kept = append(kept, replacements...)
	session.Problems = kept
}

// softerReplacements draws up to n Medium-or-Easy problems from
// related-tag pattern ladders (approximated here via the tag graph and
// catalog lookup), sourced by TagRelationship weight descending.
func softerReplacements(session *models.Session, in Input, n int, seen map[int]bool) []models.SessionProblem {
	if n <= 0 || in.TagGraph == nil {
		return nil
	}

	candidateTags := map[string]float64{}
	for _, tag := range in.CurrentAllowedTags {
		for _, nb := range in.TagGraph.Neighbors(tag) {
			if nb.Weight > candidateTags[nb.Tag] {
				candidateTags[nb.Tag] = nb.Weight
			}
		}
	}

	type tagWeight struct {
		tag    string
		weight float64
	}
	ordered := make([]tagWeight, 0, len(candidateTags))
	for tag, w := range candidateTags {
		ordered = append(ordered, tagWeight{tag, w})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].weight != ordered[j].weight {
			return ordered[i].weight > ordered[j].weight
		}
		return ordered[i].tag < ordered[j].tag
	})

	// Candidates are looked up from a map, so matches must be collected and
	// sorted by a deterministic key before selection; otherwise Go's
	// randomized map iteration order would make the replacement set (and
	// session contents) vary across identical calls.
	poolByLeetcodeID := make([]models.Problem, 0, len(in.ProblemsByLeetcodeID))
	for _, p := range in.ProblemsByLeetcodeID {
		poolByLeetcodeID = append(poolByLeetcodeID, p)
	}
	sort.SliceStable(poolByLeetcodeID, func(i, j int) bool {
		return poolByLeetcodeID[i].LeetcodeID < poolByLeetcodeID[j].LeetcodeID
	})

	out := make([]models.SessionProblem, 0, n)
	for _, difficulty := range []models.Difficulty{models.Medium, models.Easy} {
		for _, tw := range ordered {
			if len(out) >= n {
				return out
			}
			for _, p := range poolByLeetcodeID {
				if len(out) >= n {
					break
				}
				if seen[p.LeetcodeID] || p.Difficulty != difficulty || !p.HasTag(tw.tag) {
					continue
				}
				seen[p.LeetcodeID] = true
				out = append(out, models.SessionProblem{
					Problem: p,
					SelectionReason: models.SelectionReason{
						Type:   models.ReasonNew,
						Reason: "guard-rail softer replacement",
					},
				})
			}
		}
	}
	return out
}
