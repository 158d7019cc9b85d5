// Package compare implements the shared response comparator used by
// both the attention-check and gold-standard scoring paths.
package compare

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/annotation-qc/internal/model"
)

// Match reports whether actual satisfies expected. Every key of
// expected must resolve in actual, either directly or through a
// "<key>:<suffix>" compound submission key. Extra keys in actual are
// ignored, so Match is not symmetric. Lists compare as sets
// (multiselect semantics, scalar coerced to a singleton), maps recurse,
// and scalars compare case-insensitively.
func Match(expected, actual model.Response) bool {
	for key, want := range expected {
		got, ok := lookup(actual, key)
		if !ok {
			return false
		}
		if !valueMatch(want, got) {
			return false
		}
	}
	return true
}

// lookup resolves key in actual, accepting any "<key>:<suffix>" entry
// when the direct key is absent.
func lookup(actual model.Response, key string) (model.Value, bool) {
	if v, ok := actual[key]; ok {
		return v, true
	}
	prefix := key + ":"
	for k, v := range actual {
		if strings.HasPrefix(k, prefix) {
			return v, true
		}
	}
	return model.Value{}, false
}

func valueMatch(want, got model.Value) bool {
	switch want.Kind() {
	case model.KindList:
		return setsEqual(want.ListValue(), coerceList(got))
	case model.KindMap:
		if got.Kind() != model.KindMap {
			return false
		}
		return Match(model.Response(want.MapValue()), model.Response(got.MapValue()))
	default:
		if got.Kind() != model.KindScalar {
			return false
		}
		return want.Fold() == got.Fold()
	}
}

// coerceList turns a scalar into a singleton list so a single-select
// submission can satisfy a multiselect expectation.
func coerceList(v model.Value) []model.Value {
	if v.Kind() == model.KindList {
		return v.ListValue()
	}
	return []model.Value{v}
}

// setsEqual compares two element lists as sets, order-independent.
func setsEqual(a, b []model.Value) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[setKey(v)] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[setKey(v)] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

// setKey returns a comparable identity for a set element. Scalars use
// their canonical string form; nested shapes fall back to their JSON
// encoding.
func setKey(v model.Value) string {
	if v.Kind() == model.KindScalar {
		return "s:" + v.ScalarString()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return "j:" + string(data)
}
