package translation

import "sort"

// Merge reconciles local records with a remote snapshot using last-write-wins.
//
// A remote record wins only when no local record has the same key or when it is strictly newer.
// The result is sorted by LastModified in descending order.
func Merge(local, remote []Record) []Record {
	merged := make(map[string]Record, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	for _, r := range local {
		key := r.Key()
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = r
	}

	for _, r := range remote {
		key := r.Key()
		existing, ok := merged[key]
		if !ok {
			order = append(order, key)
			merged[key] = r
			continue
		}
		if r.LastModified.After(existing.LastModified) {
			merged[key] = r
		}
	}

	result := make([]Record, 0, len(merged))
	for _, key := range order {
		result = append(result, merged[key])
	}
	SortByLastModified(result)
	return result
}

// SortByLastModified sorts records with the most recently modified first, keeping the order of ties.
func SortByLastModified(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastModified.After(records[j].LastModified)
	})
}
