package qc

import (
	"sort"
	"time"

	"github.com/sells-group/annotation-qc/internal/model"
)

// MetricsSnapshot holds a point-in-time, dashboard-ready view of all
// quality-control state. Read-only; safe to call on a freshly
// constructed engine (all rates report 0.0 on empty state).
type MetricsSnapshot struct {
	AttentionChecks AttentionMetrics     `json:"attention_checks"`
	GoldStandards   GoldMetrics          `json:"gold_standards"`
	AutoPromotion   PromotionMetrics     `json:"auto_promotion"`
	PreAnnotation   PreAnnotationMetrics `json:"pre_annotation"`
	CollectedAt     time.Time            `json:"collected_at"`
}

// AttentionMetrics aggregates attention-check activity.
type AttentionMetrics struct {
	Enabled   bool                      `json:"enabled"`
	ItemCount int                       `json:"item_count"`
	Total     int                       `json:"total_checks"`
	Passed    int                       `json:"passed"`
	Failed    int                       `json:"failed"`
	PassRate  float64                   `json:"pass_rate"`
	PerUser   map[string]AttentionStats `json:"per_user"`
}

// GoldMetrics aggregates gold-standard activity, including the per-item
// accuracy breakdown regrouped across all users.
type GoldMetrics struct {
	Enabled   bool                       `json:"enabled"`
	ItemCount int                        `json:"item_count"`
	Total     int                        `json:"total_evaluations"`
	Correct   int                        `json:"correct"`
	Incorrect int                        `json:"incorrect"`
	Accuracy  float64                    `json:"accuracy"`
	PerUser   map[string]UserGoldMetrics `json:"per_user"`
	PerItem   map[string]ItemGoldMetrics `json:"per_item"`
}

// UserGoldMetrics is one user's gold-standard accuracy summary.
type UserGoldMetrics struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// ItemGoldMetrics is one item's accuracy summary across all users.
type ItemGoldMetrics struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// PromotionMetrics summarizes auto-promotion configuration and
// progress, with the top candidates by annotator count.
type PromotionMetrics struct {
	Enabled            bool                     `json:"enabled"`
	MinAnnotators      int                      `json:"min_annotators"`
	AgreementThreshold float64                  `json:"agreement_threshold"`
	PromotedCount      int                      `json:"promoted_count"`
	Promoted           []model.PromotedGoldItem `json:"promoted"`
	TopCandidates      []PromotionCandidate     `json:"top_candidates"`
}

// PreAnnotationMetrics reports pre-annotation cache coverage.
type PreAnnotationMetrics struct {
	Enabled     bool `json:"enabled"`
	CachedItems int  `json:"cached_items"`
}

const topCandidateLimit = 20

// collectMetrics traverses all engine state. Callers hold the read
// lock.
func collectMetrics(att *attentionEngine, gold *goldEngine, cons *consensusEngine, pre *preAnnotationCache) *MetricsSnapshot {
	snap := &MetricsSnapshot{CollectedAt: time.Now().UTC()}

	// Attention checks: global plus per-user pass rates.
	am := AttentionMetrics{
		Enabled:   att.cfg.Enabled,
		ItemCount: len(att.items),
		PerUser:   make(map[string]AttentionStats, len(att.results)),
	}
	for userID := range att.results {
		s := att.stats(userID)
		am.PerUser[userID] = s
		am.Total += s.Total
		am.Passed += s.Passed
		am.Failed += s.Failed
	}
	if am.Total > 0 {
		am.PassRate = float64(am.Passed) / float64(am.Total)
	}
	snap.AttentionChecks = am

	// Gold standards: per-user and per-item accuracy, the latter
	// regrouped from all users' results by item id.
	gm := GoldMetrics{
		Enabled:   gold.cfg.Enabled,
		ItemCount: len(gold.items),
		PerUser:   make(map[string]UserGoldMetrics, len(gold.results)),
		PerItem:   make(map[string]ItemGoldMetrics),
	}
	for userID, results := range gold.results {
		var u UserGoldMetrics
		for _, r := range results {
			u.Total++
			gm.Total++
			item := gm.PerItem[r.ItemID]
			item.Total++
			if r.Correct {
				u.Correct++
				gm.Correct++
				item.Correct++
			}
			gm.PerItem[r.ItemID] = item
		}
		if u.Total > 0 {
			u.Accuracy = float64(u.Correct) / float64(u.Total)
		}
		gm.PerUser[userID] = u
	}
	gm.Incorrect = gm.Total - gm.Correct
	if gm.Total > 0 {
		gm.Accuracy = float64(gm.Correct) / float64(gm.Total)
	}
	for itemID, item := range gm.PerItem {
		if item.Total > 0 {
			item.Accuracy = float64(item.Correct) / float64(item.Total)
		}
		gm.PerItem[itemID] = item
	}
	snap.GoldStandards = gm

	// Auto-promotion summary with ranked candidates.
	cands := cons.candidates()
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].AnnotatorCount != cands[j].AnnotatorCount {
			return cands[i].AnnotatorCount > cands[j].AnnotatorCount
		}
		return cands[i].ItemID < cands[j].ItemID
	})
	if len(cands) > topCandidateLimit {
		cands = cands[:topCandidateLimit]
	}
	snap.AutoPromotion = PromotionMetrics{
		Enabled:            cons.cfg.Enabled,
		MinAnnotators:      cons.cfg.MinAnnotators,
		AgreementThreshold: cons.cfg.AgreementThreshold,
		PromotedCount:      len(cons.promoted),
		Promoted:           cons.promotedItems(),
		TopCandidates:      cands,
	}

	snap.PreAnnotation = PreAnnotationMetrics{
		Enabled:     pre.cfg.Enabled,
		CachedItems: len(pre.cache),
	}

	return snap
}
