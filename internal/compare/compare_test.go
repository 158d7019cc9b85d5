package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/annotation-qc/internal/model"
)

func TestMatch_Reflexive(t *testing.T) {
	r := model.Response{
		"sentiment": model.String("Positive"),
		"topics":    model.List(model.String("a"), model.String("b")),
		"nested":    model.Map(map[string]model.Value{"k": model.Number(3)}),
	}
	assert.True(t, Match(r, r))
}

func TestMatch_ExtraActualKeysIgnored(t *testing.T) {
	expected := model.Response{"sentiment": model.String("positive")}
	actual := model.Response{
		"sentiment": model.String("positive"),
		"comment":   model.String("looks fine"),
	}
	assert.True(t, Match(expected, actual))
	// Not symmetric: swapping fails on the missing "comment" key.
	assert.False(t, Match(actual, expected))
}

func TestMatch_CaseInvariance(t *testing.T) {
	assert.True(t, Match(
		model.Response{"s": model.String("Positive")},
		model.Response{"s": model.String("positive")},
	))
}

func TestMatch_MissingKeyFails(t *testing.T) {
	expected := model.Response{"sentiment": model.String("positive")}
	assert.False(t, Match(expected, model.Response{}))
	assert.False(t, Match(expected, nil))
}

func TestMatch_PrefixedKeyAccepted(t *testing.T) {
	expected := model.Response{"entity": model.String("person")}
	actual := model.Response{"entity:span_1": model.String("Person")}
	assert.True(t, Match(expected, actual))
}

func TestMatch_ListAsSet(t *testing.T) {
	expected := model.Response{"t": model.List(model.String("a"), model.String("b"))}

	assert.True(t, Match(expected, model.Response{
		"t": model.List(model.String("b"), model.String("a")),
	}))
	assert.False(t, Match(expected, model.Response{
		"t": model.List(model.String("a")),
	}))
}

func TestMatch_ScalarCoercedToSingletonList(t *testing.T) {
	expected := model.Response{"t": model.List(model.String("a"))}
	actual := model.Response{"t": model.String("a")}
	assert.True(t, Match(expected, actual))
}

func TestMatch_ListSupersetFails(t *testing.T) {
	expected := model.Response{"t": model.List(model.String("a"), model.String("b"))}
	actual := model.Response{
		"t": model.List(model.String("a"), model.String("b"), model.String("c")),
	}
	assert.False(t, Match(expected, actual))
}

func TestMatch_NestedMapRecursion(t *testing.T) {
	expected := model.Response{
		"spans": model.Map(map[string]model.Value{"label": model.String("ORG")}),
	}
	assert.True(t, Match(expected, model.Response{
		"spans": model.Map(map[string]model.Value{
			"label": model.String("org"),
			"start": model.Number(4),
		}),
	}))
	// Scalar where a map is expected fails.
	assert.False(t, Match(expected, model.Response{"spans": model.String("ORG")}))
}

func TestMatch_NumberAgainstString(t *testing.T) {
	// Scalars compare through their canonical string form.
	expected := model.Response{"count": model.Number(3)}
	actual := model.Response{"count": model.String("3")}
	assert.True(t, Match(expected, actual))
}

func TestMatch_ShortCircuitNoPartialCredit(t *testing.T) {
	expected := model.Response{
		"a": model.String("x"),
		"b": model.String("y"),
	}
	actual := model.Response{"a": model.String("x")}
	assert.False(t, Match(expected, actual))
}

func TestMatch_EmptyExpected(t *testing.T) {
	assert.True(t, Match(model.Response{}, model.Response{"anything": model.String("v")}))
}
