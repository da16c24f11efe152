package engine

import (
	"testing"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestNextImageForNewNode(t *testing.T) {
	type imageSpec struct {
		name     string
		target   uint32
		deployed uint32
		inactive bool
	}

	tests := []struct {
		name     string
		images   []imageSpec
		expected string
		found    bool
	}{
		{name: "empty catalog", found: false},
		{
			name:   "all images at target",
			images: []imageSpec{{name: "a", target: 2, deployed: 2}},
			found:  false,
		},
		{
			name:   "inactive images ignored",
			images: []imageSpec{{name: "a", target: 2, inactive: true}},
			found:  false,
		},
		{
			name: "lowest ratio wins",
			images: []imageSpec{
				{name: "a", target: 4, deployed: 2},
				{name: "b", target: 3, deployed: 1},
			},
			expected: "b",
			found:    true,
		},
		{
			name: "ratio, not absolute count",
			images: []imageSpec{
				{name: "small", target: 2, deployed: 1},
				{name: "large", target: 10, deployed: 4},
			},
			expected: "large",
			found:    true,
		},
		{
			name: "tie goes to the earlier image",
			images: []imageSpec{
				{name: "a", target: 4, deployed: 2},
				{name: "b", target: 2, deployed: 1},
			},
			expected: "a",
			found:    true,
		},
		{
			name: "ratios closer than a float step are still ordered",
			images: []imageSpec{
				{name: "a", target: 1000, deployed: 999},
				{name: "b", target: 1001, deployed: 999},
			},
			expected: "b",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			for _, spec := range tt.images {
				e.images[spec.name] = &types.Image{
					Name:          spec.name,
					ReplicaTarget: spec.target,
					Deployed:      spec.deployed,
					Active:        !spec.inactive,
					Seq:           e.nextSeq(),
				}
				e.imageOrder = append(e.imageOrder, spec.name)
			}

			name, ok := e.nextImageForNewNode()
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}
