package ecs

import "sort"

// EntitiesWith2 returns the ids holding both component A and B, ascending.
// It intersects via the smaller store and sorts once at the end, so the
// result order never depends on map iteration.
func EntitiesWith2[A, B any](sa *Store[A], sb *Store[B]) []EntityID {
	ids := make([]EntityID, 0, min(sa.Len(), sb.Len()))
	if sa.Len() <= sb.Len() {
		for id := range sa.data {
			if _, ok := sb.data[id]; ok {
				ids = append(ids, id)
			}
		}
	} else {
		for id := range sb.data {
			if _, ok := sa.data[id]; ok {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EntitiesWith3 returns the ids holding components A, B, and C, ascending.
func EntitiesWith3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C]) []EntityID {
	ids := make([]EntityID, 0, min(sa.Len(), min(sb.Len(), sc.Len())))
	for id := range sa.data {
		if _, ok := sb.data[id]; !ok {
			continue
		}
		if _, ok := sc.data[id]; !ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
