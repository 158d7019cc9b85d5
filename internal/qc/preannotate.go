package qc

import (
	"go.uber.org/zap"

	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

// preAnnotationCache extracts the configured pre-annotation field (e.g.
// model predictions) from raw item data and caches it per item id for
// fast re-serving. No eviction: the cache lives for the process
// lifetime. Locking is the Manager's responsibility.
type preAnnotationCache struct {
	cfg   config.PreAnnotationConfig
	cache map[string]model.Response
}

func newPreAnnotationCache(cfg config.PreAnnotationConfig) *preAnnotationCache {
	return &preAnnotationCache{
		cfg:   cfg,
		cache: make(map[string]model.Response),
	}
}

// extract pulls the configured field out of itemData and caches it.
// Returns nil when the feature is disabled, the field is absent, or the
// field is not map-shaped (malformed payloads are dropped with a
// warning, never propagated).
func (c *preAnnotationCache) extract(itemID string, itemData model.Response) model.Response {
	if !c.cfg.Enabled || c.cfg.Field == "" {
		return nil
	}
	v, ok := itemData[c.cfg.Field]
	if !ok {
		return nil
	}
	if v.Kind() != model.KindMap {
		zap.L().Warn("qc: dropping malformed pre-annotation data",
			zap.String("item_id", itemID),
			zap.String("field", c.cfg.Field),
		)
		return nil
	}

	pre := model.Response(v.MapValue()).Clone()
	c.cache[itemID] = pre
	return pre.Clone()
}

// get returns the cached pre-annotations for an item, or nil. Pure
// lookup, no recomputation.
func (c *preAnnotationCache) get(itemID string) model.Response {
	if pre, ok := c.cache[itemID]; ok {
		return pre.Clone()
	}
	return nil
}

// frontendConfig projects the pre-annotation configuration for the
// presentation layer. When disabled the payload carries only the
// enabled flag.
func (c *preAnnotationCache) frontendConfig() map[string]any {
	if !c.cfg.Enabled {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":             true,
		"allow_modification":  c.cfg.AllowModification,
		"show_confidence":     c.cfg.ShowConfidence,
		"highlight_threshold": c.cfg.HighlightThreshold,
	}
}
