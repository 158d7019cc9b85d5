package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/annotation-qc/internal/config"
	"github.com/sells-group/annotation-qc/internal/model"
)

func goldItems() []model.GoldItem {
	return []model.GoldItem{
		{
			ID:          "g1",
			GoldLabel:   model.Response{"sentiment": model.String("negative")},
			Explanation: "Sarcasm inverts the surface sentiment",
		},
		{
			ID:        "g2",
			GoldLabel: model.Response{"sentiment": model.String("neutral")},
		},
	}
}

func TestGoldShouldInject(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:   true,
		Frequency: 5,
		Mode:      "production",
	}, goldItems())

	assert.False(t, e.shouldInject(4))
	assert.True(t, e.shouldInject(5))
	assert.True(t, e.shouldInject(9))
}

func TestGoldShouldInject_TrainingMode(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:   true,
		Frequency: 1,
		Mode:      "training",
	}, goldItems())
	// Training-phase injection belongs to an external collaborator.
	assert.False(t, e.shouldInject(100))
}

func TestGoldShouldInject_DisabledOrEmpty(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: false, Frequency: 1}, goldItems())
	assert.False(t, e.shouldInject(10))

	e = newGoldEngine(config.GoldStandardsConfig{Enabled: true, Frequency: 1}, nil)
	assert.False(t, e.shouldInject(10))

	e = newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())
	// No frequency configured: never injects.
	assert.False(t, e.shouldInject(10))
}

func TestGoldValidate_NotGold(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())
	assert.Nil(t, e.validate("u1", "ordinary-item", model.Response{}))
}

func TestGoldValidate_SilentDefault(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())

	// No feedback flags: exactly recorded+silent, regardless of correctness.
	v := e.validate("u1", "g1", model.Response{"sentiment": model.String("negative")})
	require.NotNil(t, v)
	assert.Equal(t, &GoldValidation{Recorded: true, Silent: true}, v)

	v = e.validate("u1", "g2", model.Response{"sentiment": model.String("wrong")})
	assert.Equal(t, &GoldValidation{Recorded: true, Silent: true}, v)

	// Recording still happened.
	a := e.accuracy("u1")
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 1, a.Correct)
}

func TestGoldValidate_FeedbackEnabled(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:         true,
		ShowGoldLabel:   true,
		ShowExplanation: true,
	}, goldItems())

	v := e.validate("u1", "g1", model.Response{"sentiment": model.String("positive")})
	require.NotNil(t, v)
	assert.True(t, v.Recorded)
	assert.False(t, v.Silent)
	require.NotNil(t, v.Correct)
	assert.False(t, *v.Correct)
	assert.Equal(t, "negative", v.GoldLabel["sentiment"].ScalarString())
	assert.Equal(t, "Sarcasm inverts the surface sentiment", v.Explanation)
}

func TestGoldValidate_ExplanationOnly(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:         true,
		ShowExplanation: true,
	}, goldItems())

	v := e.validate("u1", "g1", model.Response{"sentiment": model.String("negative")})
	require.NotNil(t, v.Correct)
	assert.True(t, *v.Correct)
	assert.Nil(t, v.GoldLabel)
	assert.Equal(t, "Sarcasm inverts the surface sentiment", v.Explanation)
}

func TestGoldValidate_AccuracyWarning(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:        true,
		ShowGoldLabel:  true,
		MinAccuracy:    0.8,
		MinEvaluations: 2,
	}, goldItems())

	wrong := model.Response{"sentiment": model.String("positive")}

	v := e.validate("u1", "g1", wrong)
	// One evaluation: below the minimum count, no warning yet.
	assert.False(t, v.AccuracyWarning)

	v = e.validate("u1", "g2", wrong)
	// 0 of 2 correct, below the 0.8 floor.
	assert.True(t, v.AccuracyWarning)
	assert.InDelta(t, 0.0, v.CurrentAccuracy, 0.001)
	assert.InDelta(t, 0.8, v.RequiredAccuracy, 0.001)
}

func TestGoldValidate_NoWarningInSilentMode(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{
		Enabled:        true,
		MinAccuracy:    0.8,
		MinEvaluations: 1,
	}, goldItems())

	wrong := model.Response{"sentiment": model.String("positive")}
	v := e.validate("u1", "g1", wrong)
	// Silent mode never surfaces the warning to the worker.
	assert.Equal(t, &GoldValidation{Recorded: true, Silent: true}, v)

	// It remains queryable through the accuracy API.
	a := e.accuracy("u1")
	assert.Equal(t, 1, a.Total)
	assert.Equal(t, 0, a.Correct)
}

func TestGoldItem_ExcludesSeenThenRecycles(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())

	first, ok := e.item("u1")
	require.True(t, ok)
	e.validate("u1", first.ID, model.Response{"sentiment": model.String("x")})

	second, ok := e.item("u1")
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)
	e.validate("u1", second.ID, model.Response{"sentiment": model.String("x")})

	_, ok = e.item("u1")
	assert.True(t, ok)
}

func TestGoldAccuracy_Empty(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())
	a := e.accuracy("nobody")
	assert.Equal(t, 0, a.Total)
	assert.Equal(t, 0.0, a.Accuracy)
	assert.Empty(t, a.Results)
}

func TestGoldAddPromoted_UnifiedLookup(t *testing.T) {
	e := newGoldEngine(config.GoldStandardsConfig{Enabled: true}, goldItems())
	assert.False(t, e.isGold("item-9"))

	e.addPromoted("item-9", model.Response{"sentiment": model.String("positive")})
	assert.True(t, e.isGold("item-9"))

	// The promoted item scores like any other gold standard.
	v := e.validate("u1", "item-9", model.Response{"sentiment": model.String("POSITIVE")})
	require.NotNil(t, v)
	assert.True(t, v.Recorded)
}
