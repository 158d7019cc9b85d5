package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// AttentionItem is a planted item with a known correct answer, loaded
// once at startup. Display holds every field of the source object other
// than id and expectedAnswer, preserved for serving to the front end.
type AttentionItem struct {
	ID             string
	ExpectedAnswer Response
	Display        map[string]Value
}

// UnmarshalJSON decodes an attention item object, splitting id and
// expectedAnswer out of the arbitrary display fields.
func (it *AttentionItem) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal attention item")
	}
	id, answer, display, err := splitItem(raw, "id", "expectedAnswer")
	if err != nil {
		return err
	}
	it.ID = id
	it.ExpectedAnswer = answer
	it.Display = display
	return nil
}

// MarshalJSON reassembles the item into its file shape.
func (it AttentionItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(joinItem(it.ID, "expectedAnswer", it.ExpectedAnswer, it.Display))
}

// Clone returns a deep copy of the item.
func (it AttentionItem) Clone() AttentionItem {
	return AttentionItem{
		ID:             it.ID,
		ExpectedAnswer: it.ExpectedAnswer.Clone(),
		Display:        Response(it.Display).Clone(),
	}
}

// GoldItem is a planted item with an expert-verified label, loaded at
// startup. Items synthesized by auto-promotion share the same label map
// but are tracked separately as PromotedGoldItem.
type GoldItem struct {
	ID          string
	GoldLabel   Response
	Explanation string
	Display     map[string]Value
}

// UnmarshalJSON decodes a gold item object, splitting id, goldLabel and
// the optional explanation out of the arbitrary display fields.
func (it *GoldItem) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal gold item")
	}
	id, label, display, err := splitItem(raw, "id", "goldLabel")
	if err != nil {
		return err
	}
	it.ID = id
	it.GoldLabel = label
	if exp, ok := display["explanation"]; ok && exp.Kind() == KindScalar {
		it.Explanation = exp.ScalarString()
		delete(display, "explanation")
	}
	it.Display = display
	return nil
}

// MarshalJSON reassembles the item into its file shape.
func (it GoldItem) MarshalJSON() ([]byte, error) {
	raw := joinItem(it.ID, "goldLabel", it.GoldLabel, it.Display)
	if it.Explanation != "" {
		raw["explanation"] = String(it.Explanation)
	}
	return json.Marshal(raw)
}

// Clone returns a deep copy of the item.
func (it GoldItem) Clone() GoldItem {
	return GoldItem{
		ID:          it.ID,
		GoldLabel:   it.GoldLabel.Clone(),
		Explanation: it.Explanation,
		Display:     Response(it.Display).Clone(),
	}
}

// splitItem extracts the id and the answer map from a decoded item
// object, leaving the remaining fields as display data.
func splitItem(raw map[string]Value, idKey, answerKey string) (string, Response, map[string]Value, error) {
	idVal, ok := raw[idKey]
	if !ok || idVal.Kind() != KindScalar || idVal.ScalarString() == "" {
		return "", nil, nil, eris.New("model: item missing " + idKey)
	}
	answerVal, ok := raw[answerKey]
	if !ok || answerVal.Kind() != KindMap {
		return "", nil, nil, eris.New("model: item missing " + answerKey)
	}

	display := make(map[string]Value, len(raw))
	for k, v := range raw {
		if k == idKey || k == answerKey {
			continue
		}
		display[k] = v
	}
	return idVal.ScalarString(), Response(answerVal.MapValue()), display, nil
}

// joinItem reassembles an item object from its parts.
func joinItem(id, answerKey string, answer Response, display map[string]Value) map[string]Value {
	raw := make(map[string]Value, len(display)+2)
	for k, v := range display {
		raw[k] = v
	}
	raw["id"] = String(id)
	raw[answerKey] = Map(answer)
	return raw
}
