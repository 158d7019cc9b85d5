package qc

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

// PromotionResult reports a successful consensus promotion. Agreement
// is reported as 1.0 at the moment of promotion by convention — it
// means "consensus reached", not the literal minimum per-schema ratio.
type PromotionResult struct {
	Promoted       bool           `json:"promoted"`
	ItemID         string         `json:"item_id"`
	ConsensusLabel model.Response `json:"consensus_label"`
	AnnotatorCount int            `json:"annotator_count"`
	Agreement      float64        `json:"agreement"`
}

// PromotionCandidate is the operator view of an item that has received
// annotations but has not yet been promoted.
type PromotionCandidate struct {
	ItemID           string             `json:"item_id"`
	AnnotatorCount   int                `json:"annotator_count"`
	NeededAnnotators int                `json:"needed_annotators"`
	SchemaAgreement  map[string]float64 `json:"schema_agreement"`
}

// annotationEntry is one worker's current raw response for an item.
// Entries keep first-submission order; a re-submission by the same
// worker overwrites in place.
type annotationEntry struct {
	userID   string
	response model.Response
}

// consensusEngine accumulates ordinary annotation submissions and
// promotes an item to gold status once enough independent annotators
// agree on every schema. Locking is the Manager's responsibility.
type consensusEngine struct {
	cfg         config.AutoPromoteConfig
	gold        *goldEngine
	annotations map[string][]annotationEntry
	order       []string
	promoted    []model.PromotedGoldItem
}

func newConsensusEngine(cfg config.AutoPromoteConfig, gold *goldEngine) *consensusEngine {
	return &consensusEngine{
		cfg:         cfg,
		gold:        gold,
		annotations: make(map[string][]annotationEntry),
	}
}

// record accumulates one submission and evaluates consensus once the
// minimum annotator count is reached. Returns nil when auto-promotion
// is disabled, the item is already a gold standard, the item is still
// short of annotators, or any schema falls below the agreement
// threshold.
func (e *consensusEngine) record(itemID, userID string, response model.Response) *PromotionResult {
	if !e.cfg.Enabled {
		return nil
	}
	// Already promoted (or a planted gold item): never recompute.
	if e.gold.isGold(itemID) {
		return nil
	}

	entries, ok := e.annotations[itemID]
	if !ok {
		e.order = append(e.order, itemID)
	}
	replaced := false
	for i := range entries {
		if entries[i].userID == userID {
			entries[i].response = response.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, annotationEntry{userID: userID, response: response.Clone()})
	}
	e.annotations[itemID] = entries

	if len(entries) < e.cfg.MinAnnotators {
		return nil
	}
	return e.evaluate(itemID, entries)
}

// evaluate computes per-schema consensus across all entries and, if
// every schema clears the agreement threshold, promotes the item.
// Promotion is all-or-nothing: one schema below the bar aborts the
// whole item.
func (e *consensusEngine) evaluate(itemID string, entries []annotationEntry) *PromotionResult {
	bySchema := groupBySchema(entries)
	total := len(entries)

	consensusLabel := make(model.Response, len(bySchema))
	for schema, values := range bySchema {
		winner, count := topValue(values)
		ratio := float64(count) / float64(total)
		if ratio < e.cfg.AgreementThreshold {
			return nil
		}
		// First original-case occurrence of the winning folded value.
		for _, v := range values {
			if foldValue(v) == winner {
				consensusLabel[schema] = v.Clone()
				break
			}
		}
	}

	annotators := make([]string, len(entries))
	for i, en := range entries {
		annotators[i] = en.userID
	}

	promoted := model.PromotedGoldItem{
		ID:               itemID,
		GoldLabel:        consensusLabel,
		AutoPromoted:     true,
		PromotedAt:       time.Now().UTC(),
		SourceAnnotators: annotators,
		AnnotatorCount:   total,
	}
	e.promoted = append(e.promoted, promoted)
	e.gold.addPromoted(itemID, consensusLabel.Clone())

	zap.L().Info("qc: item auto-promoted to gold standard",
		zap.String("item_id", itemID),
		zap.Int("annotators", total),
	)

	return &PromotionResult{
		Promoted:       true,
		ItemID:         itemID,
		ConsensusLabel: consensusLabel.Clone(),
		AnnotatorCount: total,
		Agreement:      1.0,
	}
}

// promotedItems returns a snapshot copy of all promotions.
func (e *consensusEngine) promotedItems() []model.PromotedGoldItem {
	out := make([]model.PromotedGoldItem, len(e.promoted))
	for i, p := range e.promoted {
		out[i] = p.Clone()
	}
	return out
}

// candidates lists every accumulating item that is not yet a gold
// standard, with its per-schema agreement breakdown, in first-seen
// order.
func (e *consensusEngine) candidates() []PromotionCandidate {
	var out []PromotionCandidate
	for _, itemID := range e.order {
		entries := e.annotations[itemID]
		if len(entries) == 0 || e.gold.isGold(itemID) {
			continue
		}

		total := len(entries)
		agreement := make(map[string]float64)
		for schema, values := range groupBySchema(entries) {
			_, count := topValue(values)
			agreement[schema] = float64(count) / float64(total)
		}

		needed := e.cfg.MinAnnotators - total
		if needed < 0 {
			needed = 0
		}
		out = append(out, PromotionCandidate{
			ItemID:           itemID,
			AnnotatorCount:   total,
			NeededAnnotators: needed,
			SchemaAgreement:  agreement,
		})
	}
	return out
}

// groupBySchema flattens every entry's response map into per-schema
// value lists, in annotator submission order.
func groupBySchema(entries []annotationEntry) map[string][]model.Value {
	bySchema := make(map[string][]model.Value)
	for _, en := range entries {
		for schema, v := range en.response {
			bySchema[schema] = append(bySchema[schema], v)
		}
	}
	return bySchema
}

// topValue returns the folded form and count of the most frequent value.
// Ties resolve to the value that reached the top count first.
func topValue(values []model.Value) (string, int) {
	counts := make(map[string]int, len(values))
	var bestKey string
	bestCount := 0
	for _, v := range values {
		k := foldValue(v)
		counts[k]++
		if counts[k] > bestCount {
			bestKey = k
			bestCount = counts[k]
		}
	}
	return bestKey, bestCount
}

// foldValue returns the case-folded identity of a value for frequency
// counting. Non-scalar values fold their JSON encoding.
func foldValue(v model.Value) string {
	if v.Kind() == model.KindScalar {
		return v.Fold()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return cases.Fold().String(string(data))
}
