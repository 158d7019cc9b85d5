package qc

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/annotation-qc/internal/compare"
	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

// AttentionValidation is the outcome of scoring one attention-check
// response. Blocked and Warning are mutually exclusive; Blocked wins
// once cumulative failures reach the block threshold.
type AttentionValidation struct {
	Passed  bool   `json:"passed"`
	Warning bool   `json:"warning,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
	Message string `json:"message,omitempty"`
}

// AttentionStats summarizes one user's attention-check history.
type AttentionStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"pass_rate"`
}

// attentionEngine decides injection timing, serves check items, scores
// responses and escalates repeat failures. It holds no lock of its own:
// the Manager serializes all access.
type attentionEngine struct {
	cfg       config.AttentionChecksConfig
	items     []model.AttentionItem
	expected  map[string]model.Response
	results   map[string][]model.AttentionCheckResult
	sinceLast map[string]int
}

func newAttentionEngine(cfg config.AttentionChecksConfig, items []model.AttentionItem) *attentionEngine {
	e := &attentionEngine{
		cfg:       cfg,
		items:     items,
		expected:  make(map[string]model.Response, len(items)),
		results:   make(map[string][]model.AttentionCheckResult),
		sinceLast: make(map[string]int),
	}
	for _, it := range items {
		e.expected[it.ID] = it.ExpectedAnswer
	}
	return e
}

func (e *attentionEngine) isCheck(itemID string) bool {
	_, ok := e.expected[itemID]
	return ok
}

// shouldInject reports whether the next item served to the user should
// be an attention check. Frequency takes precedence over probability;
// with neither configured no injection happens.
func (e *attentionEngine) shouldInject(userID string) bool {
	if !e.cfg.Enabled || len(e.items) == 0 {
		return false
	}
	if e.cfg.Frequency > 0 {
		return e.sinceLast[userID] >= e.cfg.Frequency
	}
	if e.cfg.Probability > 0 {
		return rand.Float64() < e.cfg.Probability
	}
	return false
}

// checkItem serves an attention check the user has not seen, recycling
// the full pool once every item has been used. Serving resets the
// user's items-since-last counter.
func (e *attentionEngine) checkItem(userID string) (model.AttentionItem, bool) {
	if !e.cfg.Enabled || len(e.items) == 0 {
		return model.AttentionItem{}, false
	}

	seen := make(map[string]bool, len(e.results[userID]))
	for _, r := range e.results[userID] {
		seen[r.ItemID] = true
	}

	var pool []model.AttentionItem
	for _, it := range e.items {
		if !seen[it.ID] {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		pool = e.items
	}

	e.sinceLast[userID] = 0
	return pool[rand.IntN(len(pool))].Clone(), true
}

// recordRegular counts a non-check item served to the user.
func (e *attentionEngine) recordRegular(userID string) {
	e.sinceLast[userID]++
}

// validate scores a response against the expected answer. Returns nil
// when itemID is not an attention check, signaling the caller to fall
// through to normal annotation handling.
func (e *attentionEngine) validate(userID, itemID string, response model.Response, responseSeconds *float64) *AttentionValidation {
	expected, ok := e.expected[itemID]
	if !ok {
		return nil
	}

	if responseSeconds != nil && e.cfg.MinResponseSeconds > 0 && *responseSeconds < e.cfg.MinResponseSeconds {
		zap.L().Warn("qc: suspiciously fast attention-check response",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
			zap.Float64("response_seconds", *responseSeconds),
			zap.Float64("min_seconds", e.cfg.MinResponseSeconds),
		)
	}

	passed := compare.Match(expected, response)

	result := model.AttentionCheckResult{
		ID:              uuid.NewString(),
		ItemID:          itemID,
		UserID:          userID,
		Passed:          passed,
		Expected:        expected.Clone(),
		Actual:          response.Clone(),
		Timestamp:       time.Now().UTC(),
		ResponseSeconds: responseSeconds,
	}
	e.results[userID] = append(e.results[userID], result)

	failures := 0
	for _, r := range e.results[userID] {
		if !r.Passed {
			failures++
		}
	}

	v := &AttentionValidation{Passed: passed}
	switch {
	case e.cfg.BlockThreshold > 0 && failures >= e.cfg.BlockThreshold:
		v.Blocked = true
		v.Message = e.cfg.BlockMessage
		zap.L().Warn("qc: user blocked after repeated attention-check failures",
			zap.String("user_id", userID),
			zap.Int("failures", failures),
		)
	case e.cfg.WarnThreshold > 0 && failures >= e.cfg.WarnThreshold:
		v.Warning = true
		v.Message = e.cfg.WarnMessage
	}
	return v
}

// stats summarizes the user's pass/fail history. PassRate is 0.0 with
// no history.
func (e *attentionEngine) stats(userID string) AttentionStats {
	var s AttentionStats
	for _, r := range e.results[userID] {
		s.Total++
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}
	return s
}
