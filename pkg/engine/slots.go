package engine

// slotTable is a node's ordered container list. Appends are O(1); eviction
// compacts the table in place, so surviving slots may move to lower indices.
type slotTable []string

// add appends image and returns its slot index
func (t *slotTable) add(image string) int {
	*t = append(*t, image)
	return len(*t) - 1
}

// evict removes every slot holding image and returns the indices those slots
// had before compaction, in ascending order.
func (t *slotTable) evict(image string) []int {
	var removed []int
	kept := (*t)[:0]
	for i, name := range *t {
		if name == image {
			removed = append(removed, i)
			continue
		}
		kept = append(kept, name)
	}
	// Clear the tail so evicted names are not retained by the backing array
	for i := len(kept); i < len(*t); i++ {
		(*t)[i] = ""
	}
	*t = kept
	return removed
}

func (t slotTable) count() int {
	return len(t)
}

func (t slotTable) countOf(image string) int {
	c := 0
	for _, name := range t {
		if name == image {
			c++
		}
	}
	return c
}

// names returns a copy of the table safe to hand out
func (t slotTable) names() []string {
	out := make([]string, len(t))
	copy(out, t)
	return out
}
