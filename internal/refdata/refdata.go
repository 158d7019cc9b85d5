// Package refdata loads the two static reference item files consumed by
// the quality-control engine: attention-check items and gold-standard
// items. Both files are JSON arrays of objects; individual items that
// fail validation are skipped with a warning rather than failing the
// load.
package refdata

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/annotation-qc/internal/model"
)

// LoadAttentionItems reads a JSON array of attention-check items from
// the given path. Items missing id or expectedAnswer are skipped.
func LoadAttentionItems(path string) ([]model.AttentionItem, error) {
	raws, err := readItemArray(path, "attention items")
	if err != nil {
		return nil, err
	}

	var items []model.AttentionItem
	for i, raw := range raws {
		var it model.AttentionItem
		if err := json.Unmarshal(raw, &it); err != nil {
			zap.L().Warn("refdata: skipping malformed attention item",
				zap.String("file", path),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// LoadGoldItems reads a JSON array of gold-standard items from the
// given path. Items missing id or goldLabel are skipped.
func LoadGoldItems(path string) ([]model.GoldItem, error) {
	raws, err := readItemArray(path, "gold items")
	if err != nil {
		return nil, err
	}

	var items []model.GoldItem
	for i, raw := range raws {
		var it model.GoldItem
		if err := json.Unmarshal(raw, &it); err != nil {
			zap.L().Warn("refdata: skipping malformed gold item",
				zap.String("file", path),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// readItemArray reads the file and decodes the top-level array without
// decoding the individual elements, so one bad element cannot fail the
// whole file.
func readItemArray(path, what string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: read "+what)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, eris.Wrap(err, "refdata: unmarshal "+what)
	}
	return raws, nil
}
