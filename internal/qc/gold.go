package qc

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/annotation-qc/internal/compare"
	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

// GoldValidation is the outcome of scoring one gold-standard response.
// In silent mode (no feedback configured) only Recorded and Silent are
// set — the worker gets no correctness signal. With feedback enabled,
// Correct is set and GoldLabel/Explanation follow the configuration,
// plus an accuracy shortfall warning once enough evaluations exist.
type GoldValidation struct {
	Recorded         bool           `json:"recorded"`
	Silent           bool           `json:"silent,omitempty"`
	Correct          *bool          `json:"correct,omitempty"`
	GoldLabel        model.Response `json:"gold_label,omitempty"`
	Explanation      string         `json:"explanation,omitempty"`
	AccuracyWarning  bool           `json:"accuracy_warning,omitempty"`
	CurrentAccuracy  float64        `json:"current_accuracy,omitempty"`
	RequiredAccuracy float64        `json:"required_accuracy,omitempty"`
}

// GoldAccuracy summarizes one user's gold-standard history. Accuracy is
// 0.0 with no evaluations.
type GoldAccuracy struct {
	Total    int                        `json:"total"`
	Correct  int                        `json:"correct"`
	Accuracy float64                    `json:"accuracy"`
	Results  []model.GoldStandardResult `json:"results"`
}

// goldEngine serves gold-standard items and silently tracks per-worker
// accuracy. The labels map is the single source of truth for gold
// membership: startup items and auto-promoted items both live in it.
// Like the other engines it relies on the Manager for locking.
type goldEngine struct {
	cfg          config.GoldStandardsConfig
	items        []model.GoldItem
	labels       map[string]model.Response
	explanations map[string]string
	results      map[string][]model.GoldStandardResult
}

func newGoldEngine(cfg config.GoldStandardsConfig, items []model.GoldItem) *goldEngine {
	e := &goldEngine{
		cfg:          cfg,
		items:        items,
		labels:       make(map[string]model.Response, len(items)),
		explanations: make(map[string]string),
		results:      make(map[string][]model.GoldStandardResult),
	}
	for _, it := range items {
		e.labels[it.ID] = it.GoldLabel
		if it.Explanation != "" {
			e.explanations[it.ID] = it.Explanation
		}
	}
	return e
}

func (e *goldEngine) isGold(itemID string) bool {
	_, ok := e.labels[itemID]
	return ok
}

// addPromoted merges a consensus-promoted item into the engine so
// lookup and injection recognize it immediately.
func (e *goldEngine) addPromoted(itemID string, label model.Response) {
	e.items = append(e.items, model.GoldItem{ID: itemID, GoldLabel: label})
	e.labels[itemID] = label
}

// shouldInject reports whether a gold standard should be served after
// itemsSince regular items. Training-phase injection belongs to an
// external collaborator, so mode "training" never injects here.
func (e *goldEngine) shouldInject(itemsSince int) bool {
	if !e.cfg.Enabled || len(e.items) == 0 || e.cfg.Mode == "training" {
		return false
	}
	return e.cfg.Frequency > 0 && itemsSince >= e.cfg.Frequency
}

// item serves a gold standard the user has not seen, recycling the full
// pool once exhausted. Unlike attention checks, serving does not reset
// any counter — that bookkeeping belongs to the caller.
func (e *goldEngine) item(userID string) (model.GoldItem, bool) {
	if !e.cfg.Enabled || len(e.items) == 0 {
		return model.GoldItem{}, false
	}

	seen := make(map[string]bool, len(e.results[userID]))
	for _, r := range e.results[userID] {
		seen[r.ItemID] = true
	}

	var pool []model.GoldItem
	for _, it := range e.items {
		if !seen[it.ID] {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		pool = e.items
	}

	return pool[rand.IntN(len(pool))].Clone(), true
}

// validate scores a response against the gold label. Returns nil when
// itemID is not a gold standard. Recording always happens regardless of
// feedback settings: gold standards are a silent accuracy-tracking
// instrument by default.
func (e *goldEngine) validate(userID, itemID string, response model.Response) *GoldValidation {
	label, ok := e.labels[itemID]
	if !ok {
		return nil
	}

	correct := compare.Match(label, response)
	explanation := e.explanations[itemID]

	result := model.GoldStandardResult{
		ID:           uuid.NewString(),
		ItemID:       itemID,
		UserID:       userID,
		Correct:      correct,
		GoldLabel:    label.Clone(),
		UserResponse: response.Clone(),
		Explanation:  explanation,
		Timestamp:    time.Now().UTC(),
	}
	e.results[userID] = append(e.results[userID], result)

	if !e.cfg.ShowGoldLabel && !e.cfg.ShowExplanation {
		return &GoldValidation{Recorded: true, Silent: true}
	}

	v := &GoldValidation{Recorded: true, Correct: &correct}
	if e.cfg.ShowGoldLabel {
		v.GoldLabel = label.Clone()
	}
	if e.cfg.ShowExplanation {
		v.Explanation = explanation
	}

	acc := e.accuracy(userID)
	if e.cfg.MinEvaluations > 0 && acc.Total >= e.cfg.MinEvaluations && acc.Accuracy < e.cfg.MinAccuracy {
		v.AccuracyWarning = true
		v.CurrentAccuracy = acc.Accuracy
		v.RequiredAccuracy = e.cfg.MinAccuracy
	}
	return v
}

// accuracy summarizes the user's gold-standard history, including
// copies of the individual results.
func (e *goldEngine) accuracy(userID string) GoldAccuracy {
	a := GoldAccuracy{Results: []model.GoldStandardResult{}}
	for _, r := range e.results[userID] {
		a.Total++
		if r.Correct {
			a.Correct++
		}
		a.Results = append(a.Results, r.Clone())
	}
	if a.Total > 0 {
		a.Accuracy = float64(a.Correct) / float64(a.Total)
	}
	return a
}
