package progress

// KeyChange describes what happens to one historical sub-value key: it is
// either renamed to To or removed.
type KeyChange struct {
	To     string `json:"to,omitempty"`
	Remove bool   `json:"remove,omitempty"`
}

func RenameTo(key string) KeyChange { return KeyChange{To: key} }

func Remove() KeyChange { return KeyChange{Remove: true} }

// Migration is a versioned sub-value key rewrite. Old keys never appear as a
// rename target, so applying a migration twice changes nothing the second time.
type Migration struct {
	Version     string               `json:"version"`
	Description string               `json:"description"`
	Changes     map[string]KeyChange `json:"changes"`
}

// SubValueKeysV1 corrects the sub-value keys recorded before the composite
// indicators settled on their current sub-indicator names.
var SubValueKeysV1 = Migration{
	Version:     "2025-01-subvalue-keys",
	Description: "align sub-value keys with composite indicator definitions",
	Changes: map[string]KeyChange{
		"poultry":  RenameTo("chicken"),
		"maize_kg": RenameTo("maize"),
		"soya_kg":  RenameTo("soya"),
		"bq":       RenameTo("lsd"),
		"dap":      RenameTo("urea"),
		"cows":     Remove(),
	},
}

type MigrationResult struct {
	Version      string `json:"version"`
	UpdatedCount int    `json:"updatedSubmissions"`
	TotalChecked int    `json:"totalChecked"`
	// Updated holds the indexes of the input maps that were rewritten.
	Updated []int `json:"-"`
}

// Apply rewrites one sub-value map. It returns the new map and whether any key
// was renamed or removed; the input map is left untouched.
//
// When a legacy key and its replacement are both present the two values are
// summed. Both were reported for the same sub-indicator, and letting the last
// write win would depend on map iteration order, so the result would change
// from run to run.
func (m Migration) Apply(subValues map[string]float64) (map[string]float64, bool) {
	if subValues == nil {
		return nil, false
	}
	out := make(map[string]float64, len(subValues))
	modified := false
	for key, value := range subValues {
		change, ok := m.Changes[key]
		if !ok {
			out[key] += value
			continue
		}
		modified = true
		if change.Remove || change.To == "" {
			continue
		}
		out[change.To] += value
	}
	return out, modified
}

// MigrateSubValueKeys applies m to every non-nil sub-value map. The returned
// slice has one entry per input: the rewritten map when it changed, the
// original otherwise.
func MigrateSubValueKeys(subValues []map[string]float64, m Migration) ([]map[string]float64, MigrationResult) {
	result := MigrationResult{Version: m.Version}
	out := make([]map[string]float64, len(subValues))
	for i, sv := range subValues {
		out[i] = sv
		if sv == nil {
			continue
		}
		result.TotalChecked++
		migrated, modified := m.Apply(sv)
		if !modified {
			continue
		}
		out[i] = migrated
		result.UpdatedCount++
		result.Updated = append(result.Updated, i)
	}
	return out, result
}
