package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

func TestPreAnnotationExtract(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled: true,
		Field:   "model_predictions",
	})

	itemData := model.Response{
		"text": model.String("Great product"),
		"model_predictions": model.Map(map[string]model.Value{
			"sentiment":  model.String("positive"),
			"confidence": model.Number(0.93),
		}),
	}

	pre := c.extract("item-1", itemData)
	require.NotNil(t, pre)
	assert.Equal(t, "positive", pre["sentiment"].ScalarString())

	// Served from cache afterward.
	cached := c.get("item-1")
	require.NotNil(t, cached)
	assert.Equal(t, "0.93", cached["confidence"].ScalarString())
}

func TestPreAnnotationExtract_Disabled(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled: false,
		Field:   "model_predictions",
	})
	assert.Nil(t, c.extract("item-1", model.Response{
		"model_predictions": model.Map(map[string]model.Value{}),
	}))
	assert.Nil(t, c.get("item-1"))
}

func TestPreAnnotationExtract_FieldAbsent(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled: true,
		Field:   "model_predictions",
	})
	assert.Nil(t, c.extract("item-1", model.Response{"text": model.String("hi")}))
}

func TestPreAnnotationExtract_MalformedDropped(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled: true,
		Field:   "model_predictions",
	})
	// Field present but not map-shaped: dropped, not cached.
	assert.Nil(t, c.extract("item-1", model.Response{
		"model_predictions": model.String("not a map"),
	}))
	assert.Nil(t, c.get("item-1"))
}

func TestPreAnnotationGet_IsCopy(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled: true,
		Field:   "model_predictions",
	})
	c.extract("item-1", model.Response{
		"model_predictions": model.Map(map[string]model.Value{"sentiment": model.String("positive")}),
	})

	got := c.get("item-1")
	got["sentiment"] = model.String("tampered")
	assert.Equal(t, "positive", c.get("item-1")["sentiment"].ScalarString())
}

func TestPreAnnotationFrontendConfig(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{
		Enabled:            true,
		AllowModification:  true,
		ShowConfidence:     false,
		HighlightThreshold: 0.5,
	})
	fc := c.frontendConfig()
	assert.Equal(t, true, fc["enabled"])
	assert.Equal(t, true, fc["allow_modification"])
	assert.Equal(t, false, fc["show_confidence"])
	assert.Equal(t, 0.5, fc["highlight_threshold"])
}

func TestPreAnnotationFrontendConfig_DisabledOnlyFlag(t *testing.T) {
	c := newPreAnnotationCache(config.PreAnnotationConfig{Enabled: false})
	assert.Equal(t, map[string]any{"enabled": false}, c.frontendConfig())
}
