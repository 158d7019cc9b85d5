package model

import "time"

// AttentionCheckResult records one attention-check scoring event.
// Results are append-only: once created they are never mutated or
// deleted, the per-user history is authoritative.
type AttentionCheckResult struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	UserID          string    `json:"user_id"`
	Passed          bool      `json:"passed"`
	Expected        Response  `json:"expected"`
	Actual          Response  `json:"actual"`
	Timestamp       time.Time `json:"timestamp"`
	ResponseSeconds *float64  `json:"response_time_seconds,omitempty"`
}

// Clone returns a deep copy of the result.
func (r AttentionCheckResult) Clone() AttentionCheckResult {
	out := r
	out.Expected = r.Expected.Clone()
	out.Actual = r.Actual.Clone()
	if r.ResponseSeconds != nil {
		secs := *r.ResponseSeconds
		out.ResponseSeconds = &secs
	}
	return out
}

// GoldStandardResult records one gold-standard scoring event. Same
// lifecycle discipline as AttentionCheckResult.
type GoldStandardResult struct {
	ID           string    `json:"id"`
	ItemID       string    `json:"item_id"`
	UserID       string    `json:"user_id"`
	Correct      bool      `json:"correct"`
	GoldLabel    Response  `json:"gold_label"`
	UserResponse Response  `json:"user_response"`
	Explanation  string    `json:"explanation,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the result.
func (r GoldStandardResult) Clone() GoldStandardResult {
	out := r
	out.GoldLabel = r.GoldLabel.Clone()
	out.UserResponse = r.UserResponse.Clone()
	return out
}

// PromotedGoldItem records the provenance of an item promoted to gold
// status by annotator consensus. Created exactly once per item and
// immutable afterward; the unified gold-label map guarantees the item
// never re-enters promotion.
type PromotedGoldItem struct {
	ID               string    `json:"id"`
	GoldLabel        Response  `json:"gold_label"`
	AutoPromoted     bool      `json:"auto_promoted"`
	PromotedAt       time.Time `json:"promoted_at"`
	SourceAnnotators []string  `json:"source_annotators"`
	AnnotatorCount   int       `json:"annotator_count"`
}

// Clone returns a deep copy of the promoted item.
func (p PromotedGoldItem) Clone() PromotedGoldItem {
	out := p
	out.GoldLabel = p.GoldLabel.Clone()
	out.SourceAnnotators = append([]string(nil), p.SourceAnnotators...)
	return out
}
