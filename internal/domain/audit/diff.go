package audit

import "reflect"

// ComputeDiff returns {field: {"old": x, "new": y}} for every key of the union
// whose values differ. When either side is missing entirely the diff is empty.
func ComputeDiff(old, new map[string]any) map[string]any {
	diff := map[string]any{}
	if len(old) == 0 || len(new) == 0 {
		return diff
	}
	keys := make(map[string]struct{}, len(old)+len(new))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range new {
		keys[k] = struct{}{}
	}
	for k := range keys {
		o, n := old[k], new[k]
		if !reflect.DeepEqual(o, n) {
			diff[k] = map[string]any{"old": o, "new": n}
		}
	}
	return diff
}
