// Package engine orchestrates the core components behind the five
// inbound API entry points (spec §6): start_session, record_attempt,
// complete_session, skip_problem, classify_stale_session. It owns the
// per-user logical lock, retry wiring, and ordering guarantee described
// in spec §5, grounded on the teacher's service-layer orchestration in
// scheduler-service/internal/service/session_service.go.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptive-engine/internal/assembler"
	"adaptive-engine/internal/clock"
	"adaptive-engine/internal/config"
	"adaptive-engine/internal/decay"
	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/ladder"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/mastery"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/models"
	"adaptive-engine/internal/ports"
	"adaptive-engine/internal/reducer"
	"adaptive-engine/internal/relgraph"
	"adaptive-engine/internal/retry"
	"adaptive-engine/internal/scheduler"
	"adaptive-engine/internal/settings"
	"adaptive-engine/internal/tier"
)

// EventPublisher is the minimal outbound-events contract the engine
// depends on, implemented by internal/events against Kafka.
type EventPublisher interface {
	PublishSessionCompleted(ctx context.Context, analytics models.SessionAnalytics) error
	PublishTierAdvanced(ctx context.Context, userID string, newTier models.TierClassification) error
}

// Deps bundles every port, and cross-cutting dependency the engine
// consumes.
type Deps struct {
	Catalog            ports.ProblemCatalog
	UserProblems       ports.UserProblemStore
	Attempts           ports.AttemptLog
	Sessions           ports.SessionStore
	TagMastery         ports.TagMasteryStore
	TagRelationships   ports.TagRelationshipStore
	Ladders            ports.PatternLadderStore
	Analytics          ports.SessionAnalyticsStore
	SessionStates      ports.SessionStateStore
	Clock              clock.Clock
	Config             *config.Config
	Logger             *logger.Logger
	Metrics            *metrics.Metrics
	Events             EventPublisher
}

// Engine implements the inbound API (spec §6).
type Engine struct {
	deps  Deps
	locks sync.Map // userID -> *sync.Mutex
}

func New(deps Deps) *Engine {
	return &Engine{deps: deps}
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// StartSession resumes an in-progress session or builds a new one via
// §4.E + §4.F (spec §6). Idempotent for the same "now".
func (e *Engine) StartSession(ctx context.Context, userID string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.Cancelled, "start_session cancelled", err)
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := e.deps.Clock.Now()

	existing, err := e.deps.Sessions.GetLatest(ctx, userID)
	if err != nil && errs.KindOf(err) != errs.NotFound {
		return nil, err
	}
	if existing != nil && existing.Status == models.StatusInProgress {
		staleResult := ClassifyStaleSession(StalenessInput{
			Session:       *existing,
			Now:           now,
			AttemptCount:  len(existing.Attempts),
			ProgressRatio: progressRatio(*existing),
		})
		if staleResult.Action == ActionNoAction || staleResult.Action == ActionFlagForUserChoice {
			return existing, nil
		}
		// expire / auto_complete / create_new_tracking / refresh_guided_session
		// all fall through to building a fresh session below; the caller is
		// responsible for any side-effecting cleanup of the stale one.
	}

	state, err := e.deps.SessionStates.Get(ctx, userID)
	if err != nil && errs.KindOf(err) != errs.NotFound {
		return nil, err
	}
	if state == nil {
		state = models.NewSessionState(userID, now)
	}

	relationships, err := e.deps.TagRelationships.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	masteryRows, err := e.deps.TagMastery.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	masteryByTag := map[string]models.TagMastery{}
	for _, m := range masteryRows {
		masteryByTag[m.Tag] = m
	}

	tierResult := tier.Compute(relationships, masteryByTag, state.TierStartedAt, now)
	onboarding := len(masteryRows) == 0

	userProblems, err := e.deps.UserProblems.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var lastAttemptAt *time.Time
	daysSinceLast := 9999
	if len(userProblems) > 0 {
		for _, up := range userProblems {
			if up.LastAttemptDate != nil && (lastAttemptAt == nil || up.LastAttemptDate.After(*lastAttemptAt)) {
				lastAttemptAt = up.LastAttemptDate
			}
		}
		if lastAttemptAt != nil {
			daysSinceLast = int(now.Sub(*lastAttemptAt).Hours() / 24.0)
		}
	}

	nextState := settings.Compute(e.deps.Config.Settings, settings.Input{
		State:                *state,
		FocusTags:            tierResult.FocusTags,
		LastAttemptAt:        lastAttemptAt,
		DaysSinceLastAttempt: daysSinceLast,
		Now:                  now,
	})
	if tierResult.TierAdvanced {
		nextState.TierStartedAt = now
		if e.deps.Events != nil {
			_ = e.deps.Events.PublishTierAdvanced(ctx, userID, tierResult.Tier)
		}
		if e.deps.Metrics != nil {
			e.deps.Metrics.TierAdvancements.Inc()
		}
	}

	session := e.assembleSession(ctx, userID, onboarding, now, nextState, tierResult, userProblems)

	session.SessionID = uuid.NewString()
	session.Date = now
	session.Status = models.StatusInProgress
	session.LastActivityTime = now
	session.Origin = models.OriginGenerator
	session.SessionType = models.SessionStandard

	if err := e.deps.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	if err := e.deps.SessionStates.Put(ctx, &nextState); err != nil {
		return nil, err
	}

	if e.deps.Metrics != nil {
		e.deps.Metrics.SessionsStarted.Inc()
	}
	return session, nil
}

func (e *Engine) assembleSession(ctx context.Context, userID string, onboarding bool, now time.Time, state models.SessionState, tierResult tier.Result, userProblems []models.UserProblem) *models.Session {
	timer := metrics.NewTimer()
	defer func() {
		if e.deps.Metrics != nil {
			e.deps.Metrics.SessionAssemblyDuration.Observe(timer.Duration().Seconds())
		}
	}()

	decayScores := map[int]float64{}
	problemIDByLeetcodeID := map[int]string{}
	for _, up := range userProblems {
		stability := up.Stability
		if stability <= 0 {
			stability = decay.DefaultStability
		}
		decayScores[up.LeetcodeID] = decay.Score(up.LastAttemptDate, up.AttemptStats.SuccessRate(), stability, now)
		problemIDByLeetcodeID[up.LeetcodeID] = up.ProblemID
	}

	due := scheduler.Due(userProblems, decayByProblemID(userProblems, decayScores), now)
	learningDue := scheduler.Learning(due)
	masteredDue := scheduler.Mastered(due)

	var masteredUserProblems []models.UserProblem
	var attemptedIDs = map[int]bool{}
	var fallbackPool []models.UserProblem
	for _, up := range userProblems {
		attemptedIDs[up.LeetcodeID] = true
		if up.IsMastered() {
			masteredUserProblems = append(masteredUserProblems, up)
		}
		if up.AttemptStats.Total > 0 {
			fallbackPool = append(fallbackPool, up)
		}
	}
	scheduledFallback := scheduler.Due(fallbackPool, decayByProblemID(fallbackPool, decayScores), now.Add(24*365*time.Hour))

	catalogSnapshot := make([]models.Problem, 0)
	problemsByID := map[int]models.Problem{}
	if cached, err := e.deps.Catalog.ListWithFilter(ctx, nil, models.Hard, nil, 500); err == nil {
		catalogSnapshot = cached
		for _, p := range cached {
			problemsByID[p.LeetcodeID] = p
		}
	}

	problemGraph := relgraph.BuildProblemGraph(catalogSnapshot)

	relationships, _ := e.deps.TagRelationships.ListAll(ctx)
	tagGraph := relgraph.BuildTagGraph(relationships)

	leetcodeIDByProblemID := map[string]int{}
	for leetcodeID, problemID := range problemIDByLeetcodeID {
		leetcodeIDByProblemID[problemID] = leetcodeID
	}

	var recentFailedIDs []int
	recentSessions, _ := e.deps.Sessions.ByType(ctx, userID, models.SessionStandard)
	if len(recentSessions) > 2 {
		recentSessions = recentSessions[:2] // ByType lists newest first
	}
	for _, s := range recentSessions {
		for _, a := range s.Attempts {
			if !a.Success {
				if leetcodeID, ok := leetcodeIDByProblemID[a.ProblemID]; ok {
					recentFailedIDs = append(recentFailedIDs, leetcodeID)
				}
			}
		}
	}

	masteryRows, err := e.deps.TagMastery.ListByUser(ctx, userID)
	masteryByTag := map[string]models.TagMastery{}
	if err == nil {
		for _, m := range masteryRows {
			masteryByTag[m.Tag] = m
		}
	}

	input := assembler.Input{
		UserID:                  userID,
		SessionLength:           state.SessionLength,
		CurrentDifficultyCap:    state.CurrentDifficultyCap,
		CurrentAllowedTags:      state.CurrentAllowedTags,
		Onboarding:              onboarding,
		RecentAccuracy:          state.LastPerformance.Accuracy,
		RecentFailedLeetcodeIDs: recentFailedIDs,
		MasteredUserProblems:    masteredUserProblems,
		ProblemGraph:            problemGraph,
		LearningDue:             learningDue,
		MasteredDue:             masteredDue,
		AttemptedFallbackPool:   scheduledFallback,
		ProblemsByLeetcodeID:    problemsByID,
		TagMasteryByTag:         masteryByTag,
		DecayScoreByLeetcodeID:  decayScores,
		AlreadyAttemptedIDs:     attemptedIDs,
		TagGraph:                tagGraph,
	}

	return assembler.Build(ctx, e.deps.Catalog, e.deps.Config.Scoring, input, e.deps.Logger)
}

func decayByProblemID(userProblems []models.UserProblem, decayByLeetcodeID map[int]float64) map[string]float64 {
	out := map[string]float64{}
	for _, up := range userProblems {
		out[up.ProblemID] = decayByLeetcodeID[up.LeetcodeID]
	}
	return out
}

// RecordAttempt appends an attempt to the session and, only when that
// attempt completes the session, runs the Post-Session Reducer (spec
// §6, §4.G). leetcodeID identifies which in-session problem the attempt
// resolves, since Attempt.ProblemID is the opaque per-user UserProblem
// key rather than the catalog id the Session tracks remaining work by.
func (e *Engine) RecordAttempt(ctx context.Context, sessionID string, attempt models.Attempt, leetcodeID int) error {
	session, err := e.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	lock := e.userLock(session.UserID)
	lock.Lock()
	defer lock.Unlock()

	session.Attempts = append(session.Attempts, attempt)
	session.LastActivityTime = e.deps.Clock.Now()
	session.RemoveProblem(leetcodeID)

	if err := retry.Do(ctx, retry.Normal, func(ctx context.Context) error {
		return e.deps.Attempts.Append(ctx, &attempt)
	}); err != nil {
		return err
	}

	if len(session.Problems) == 0 {
		session.Status = models.StatusCompleted
		if err := e.deps.Sessions.Put(ctx, session); err != nil {
			return err
		}
		_, err := e.completeLocked(ctx, session)
		return err
	}

	return e.deps.Sessions.Put(ctx, session)
}

// CompleteSession forces completion; safe to call twice (spec §6).
func (e *Engine) CompleteSession(ctx context.Context, sessionID string) (*models.SessionAnalytics, error) {
	session, err := e.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lock := e.userLock(session.UserID)
	lock.Lock()
	defer lock.Unlock()

	if session.Status == models.StatusCompleted {
		history, err := e.deps.Analytics.ListByUser(ctx, session.UserID, 1)
		if err != nil || len(history) == 0 {
			return &models.SessionAnalytics{SessionID: session.SessionID, UserID: session.UserID}, nil
		}
		return &history[0], nil
	}

	session.Status = models.StatusCompleted
	if err := e.deps.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return e.completeLocked(ctx, session)
}

// completeLocked assumes the caller already holds the per-user lock.
func (e *Engine) completeLocked(ctx context.Context, session *models.Session) (*models.SessionAnalytics, error) {
	now := e.deps.Clock.Now()

	userProblems, err := e.deps.UserProblems.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	userProblemsByID := map[string]models.UserProblem{}
	problemsByLeetcodeID := map[int]models.Problem{}
	for _, up := range userProblems {
		userProblemsByID[up.ProblemID] = up
	}
	for _, sp := range session.Problems {
		problemsByLeetcodeID[sp.Problem.LeetcodeID] = sp.Problem
	}

	masteryRows, err := e.deps.TagMastery.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	existingMastery := map[string]models.TagMastery{}
	for _, m := range masteryRows {
		existingMastery[m.Tag] = m
	}

	state, err := e.deps.SessionStates.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	ladderList, err := e.deps.Ladders.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	out := reducer.Apply(e.deps.Config, reducer.Input{
		Session:              *session,
		Attempts:             session.Attempts,
		ProblemsByLeetcodeID: problemsByLeetcodeID,
		UserProblemsByID:     userProblemsByID,
		ExistingTagMastery:   existingMastery,
		AllUserProblems:      userProblems,
		PriorState:           *state,
		Ladders:              ladderList,
		Now:                  now,
	})

	for i := range out.UpdatedUserProblems {
		if err := e.deps.UserProblems.Put(ctx, &out.UpdatedUserProblems[i]); err != nil {
			return nil, err
		}
	}
	if err := e.deps.TagMastery.Replace(ctx, session.UserID, out.TagMastery); err != nil {
		return nil, err
	}
	if e.deps.Metrics != nil {
		e.deps.Metrics.TagMasteryRecomputes.Inc()
	}
	if err := e.deps.Analytics.Put(ctx, &out.Analytics); err != nil {
		return nil, err
	}
	if err := e.deps.SessionStates.Put(ctx, &out.NextState); err != nil {
		return nil, err
	}
	for i := range out.UpdatedLadders {
		if err := e.deps.Ladders.Put(ctx, &out.UpdatedLadders[i]); err != nil {
			return nil, err
		}
	}

	if err := e.regenerateLadders(ctx, session.UserID, out.LaddersToRegenerate, userProblemsByID); err != nil {
		if e.deps.Logger != nil {
			e.deps.Logger.WithContext(ctx).WithError(err).Warn("ladder regeneration failed, leaving exhausted ladders in place")
		}
	}

	if e.deps.Metrics != nil {
		e.deps.Metrics.SessionsCompleted.Inc()
	}
	if e.deps.Events != nil {
		_ = e.deps.Events.PublishSessionCompleted(ctx, out.Analytics)
	}

	return &out.Analytics, nil
}

// SkipProblem removes a problem from the session's remaining list (spec
// §6).
func (e *Engine) SkipProblem(ctx context.Context, sessionID string, leetcodeID int) (*models.Session, error) {
	session, err := e.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lock := e.userLock(session.UserID)
	lock.Lock()
	defer lock.Unlock()

	session.RemoveProblem(leetcodeID)
	session.LastActivityTime = e.deps.Clock.Now()
	if err := e.deps.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClassifyStaleSession exposes the staleness classifier as part of the
// inbound API (spec §6).
func (e *Engine) ClassifyStaleSession(ctx context.Context, session models.Session) StalenessResult {
	now := e.deps.Clock.Now()
	return ClassifyStaleSession(StalenessInput{
		Session:       session,
		Now:           now,
		AttemptCount:  len(session.Attempts),
		ProgressRatio: progressRatio(session),
	})
}

func progressRatio(s models.Session) float64 {
	total := len(s.Problems) + len(s.Attempts)
	if total == 0 {
		return 0
	}
	return float64(len(s.Attempts)) / float64(total)
}

// regenerateLadders rebuilds every exhausted ladder in tags (spec §4.G
// step 6 / §4.H), sourcing candidates from the catalog filtered to the
// tag.
func (e *Engine) regenerateLadders(ctx context.Context, userID string, tags []string, userProblemsByID map[string]models.UserProblem) error {
	if len(tags) == 0 {
		return nil
	}
	attempted := map[int]bool{}
	for _, up := range userProblemsByID {
		if up.AttemptStats.Total > 0 {
			attempted[up.LeetcodeID] = true
		}
	}

	for _, tag := range tags {
		candidates, err := e.deps.Catalog.ListWithFilter(ctx, []string{tag}, models.Hard, nil, 200)
		if err != nil {
			return err
		}
		fresh := ladder.Generate(tag, userID, candidates, attempted, nil, nil, nil, false, false, nil)
		if err := e.deps.Ladders.Put(ctx, &fresh); err != nil {
			return err
		}
	}
	return nil
}
