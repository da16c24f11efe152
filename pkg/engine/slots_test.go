package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotTableAdd(t *testing.T) {
	var table slotTable

	assert.Equal(t, 0, table.add("a"))
	assert.Equal(t, 1, table.add("b"))
	assert.Equal(t, 2, table.add("a"))
	assert.Equal(t, 3, table.count())
	assert.Equal(t, 2, table.countOf("a"))
}

func TestSlotTableEvict(t *testing.T) {
	tests := []struct {
		name      string
		slots     []string
		evict     string
		removed   []int
		remaining []string
	}{
		{
			name:      "interleaved",
			slots:     []string{"a", "b", "a", "c"},
			evict:     "a",
			removed:   []int{0, 2},
			remaining: []string{"b", "c"},
		},
		{
			name:      "absent image",
			slots:     []string{"a", "b"},
			evict:     "z",
			removed:   nil,
			remaining: []string{"a", "b"},
		},
		{
			name:      "every slot",
			slots:     []string{"a", "a"},
			evict:     "a",
			removed:   []int{0, 1},
			remaining: []string{},
		},
		{
			name:      "empty table",
			slots:     nil,
			evict:     "a",
			removed:   nil,
			remaining: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := slotTable(append([]string(nil), tt.slots...))
			removed := table.evict(tt.evict)

			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, tt.remaining, table.names())
		})
	}
}

func TestSlotTableNamesIsACopy(t *testing.T) {
	table := slotTable{"a", "b"}
	names := table.names()
	names[0] = "mutated"

	assert.Equal(t, "a", table[0])
}
