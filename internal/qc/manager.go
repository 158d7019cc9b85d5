// Package qc implements the quality-control engine for the annotation
// platform: attention-check injection and scoring, gold-standard
// injection and silent accuracy tracking, consensus-based auto-promotion
// of items to gold status, and pre-annotation caching. The Manager owns
// all engine state behind a single read/write lock; every public method
// returns copies, never live references.
package qc

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
	"github.com/sells-group/annotation-qc/internal/refdata"
)

// Manager is the quality-control facade consumed by the request-routing
// layer. All mutable state lives in the engines it owns; the engines
// themselves never lock, so public methods can compose engine calls
// under a single lock acquisition.
type Manager struct {
	mu        sync.RWMutex
	attention *attentionEngine
	gold      *goldEngine
	consensus *consensusEngine
	preAnnot  *preAnnotationCache
}

// NewManager constructs the engine from configuration. The two
// reference files are loaded concurrently, once, before any per-request
// lock exists. A missing or unreadable file leaves the corresponding
// feature silently inert, never fails construction.
func NewManager(cfg *config.Config, baseDir string) *Manager {
	var (
		attentionItems []model.AttentionItem
		goldItems      []model.GoldItem
	)

	var g errgroup.Group
	if cfg.AttentionChecks.Enabled {
		g.Go(func() error {
			path := resolvePath(baseDir, cfg.AttentionChecks.ItemsFile)
			items, err := refdata.LoadAttentionItems(path)
			if err != nil {
				zap.L().Warn("qc: attention checks inert, items file not loaded",
					zap.String("path", path),
					zap.Error(err),
				)
				return nil
			}
			attentionItems = items
			return nil
		})
	}
	if cfg.GoldStandards.Enabled {
		g.Go(func() error {
			path := resolvePath(baseDir, cfg.GoldStandards.ItemsFile)
			items, err := refdata.LoadGoldItems(path)
			if err != nil {
				zap.L().Warn("qc: gold standards inert, items file not loaded",
					zap.String("path", path),
					zap.Error(err),
				)
				return nil
			}
			goldItems = items
			return nil
		})
	}
	_ = g.Wait() // goroutines swallow errors into warnings

	gold := newGoldEngine(cfg.GoldStandards, goldItems)
	m := &Manager{
		attention: newAttentionEngine(cfg.AttentionChecks, attentionItems),
		gold:      gold,
		consensus: newConsensusEngine(cfg.GoldStandards.AutoPromote, gold),
		preAnnot:  newPreAnnotationCache(cfg.PreAnnotation),
	}

	zap.L().Info("qc: manager constructed",
		zap.Int("attention_items", len(attentionItems)),
		zap.Int("gold_items", len(goldItems)),
		zap.Bool("auto_promote", cfg.GoldStandards.AutoPromote.Enabled),
		zap.Bool("pre_annotation", cfg.PreAnnotation.Enabled),
	)
	return m
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// IsAttentionCheck reports whether the item id is a planted attention
// check.
func (m *Manager) IsAttentionCheck(itemID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attention.isCheck(itemID)
}

// ShouldInjectAttentionCheck reports whether the next item served to
// the user should be an attention check.
func (m *Manager) ShouldInjectAttentionCheck(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attention.shouldInject(userID)
}

// GetAttentionCheckItem serves an attention check for the user and
// resets the user's items-since-last counter.
func (m *Manager) GetAttentionCheckItem(userID string) (model.AttentionItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attention.checkItem(userID)
}

// RecordRegularItem counts a non-check item served to the user. Called
// by the item-flow controller for every ordinary item.
func (m *Manager) RecordRegularItem(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attention.recordRegular(userID)
}

// ValidateAttentionResponse scores an attention-check submission.
// Returns nil when itemID is not an attention check; the caller must
// then treat the submission as a normal annotation.
func (m *Manager) ValidateAttentionResponse(userID, itemID string, response model.Response, responseSeconds *float64) *AttentionValidation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attention.validate(userID, itemID, response, responseSeconds)
}

// AttentionStats summarizes the user's attention-check history.
func (m *Manager) AttentionStats(userID string) AttentionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attention.stats(userID)
}

// IsGoldStandard reports whether the item id is a gold standard, planted
// or auto-promoted.
func (m *Manager) IsGoldStandard(itemID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gold.isGold(itemID)
}

// ShouldInjectGoldStandard reports whether a gold standard should be
// served to the user after itemsSince regular items. The caller owns
// the counter for gold items.
func (m *Manager) ShouldInjectGoldStandard(userID string, itemsSince int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gold.shouldInject(itemsSince)
}

// GetGoldStandardItem serves a gold-standard item for the user.
func (m *Manager) GetGoldStandardItem(userID string) (model.GoldItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gold.item(userID)
}

// ValidateGoldResponse scores a gold-standard submission. Returns nil
// when itemID is not a gold standard.
func (m *Manager) ValidateGoldResponse(userID, itemID string, response model.Response) *GoldValidation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gold.validate(userID, itemID, response)
}

// GoldAccuracy summarizes the user's gold-standard history.
func (m *Manager) GoldAccuracy(userID string) GoldAccuracy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gold.accuracy(userID)
}

// RecordItemAnnotation feeds an ordinary annotation submission to the
// consensus engine. Called after every submission regardless of
// quality-control configuration so auto-promotion observes all traffic.
// Returns promotion info when this submission completes a consensus.
func (m *Manager) RecordItemAnnotation(itemID, userID string, response model.Response) *PromotionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consensus.record(itemID, userID, response)
}

// PromotedGoldStandards returns a snapshot of all auto-promotions.
func (m *Manager) PromotedGoldStandards() []model.PromotedGoldItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consensus.promotedItems()
}

// PromotionCandidates lists items accumulating toward promotion.
func (m *Manager) PromotionCandidates() []PromotionCandidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consensus.candidates()
}

// ExtractPreAnnotations extracts and caches the configured
// pre-annotation field from raw item data.
func (m *Manager) ExtractPreAnnotations(itemID string, itemData model.Response) model.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preAnnot.extract(itemID, itemData)
}

// GetPreAnnotations returns cached pre-annotations for an item, or nil.
func (m *Manager) GetPreAnnotations(itemID string) model.Response {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preAnnot.get(itemID)
}

// GetPreAnnotationConfig projects the pre-annotation configuration for
// the front end.
func (m *Manager) GetPreAnnotationConfig() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preAnnot.frontendConfig()
}

// Metrics produces a dashboard-ready snapshot of all engine state.
func (m *Manager) Metrics() *MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return collectMetrics(m.attention, m.gold, m.consensus, m.preAnnot)
}

// AllAttentionResults returns a deep copy of every user's
// attention-check history.
func (m *Manager) AllAttentionResults() map[string][]model.AttentionCheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]model.AttentionCheckResult, len(m.attention.results))
	for userID, results := range m.attention.results {
		copies := make([]model.AttentionCheckResult, len(results))
		for i, r := range results {
			copies[i] = r.Clone()
		}
		out[userID] = copies
	}
	return out
}

// AllGoldResults returns a deep copy of every user's gold-standard
// history.
func (m *Manager) AllGoldResults() map[string][]model.GoldStandardResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]model.GoldStandardResult, len(m.gold.results))
	for userID, results := range m.gold.results {
		copies := make([]model.GoldStandardResult, len(results))
		for i, r := range results {
			copies[i] = r.Clone()
		}
		out[userID] = copies
	}
	return out
}
