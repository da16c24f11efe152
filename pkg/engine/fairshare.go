package engine

// fairShareScale turns deployed/target into an integer ratio
const fairShareScale = 1_000_000

// nextImageForNewNode picks the image a freshly joined node should try first:
// the active, under-target image with the smallest deployed/target ratio.
// Ties go to the image registered first.
func (e *Engine) nextImageForNewNode() (string, bool) {
	var (
		best      string
		bestRatio uint64
		found     bool
	)
	for _, name := range e.imageOrder {
		img := e.images[name]
		if !img.Active || img.Deployed >= img.ReplicaTarget {
			continue
		}
		ratio := uint64(img.Deployed) * fairShareScale / uint64(img.ReplicaTarget)
		if !found || ratio < bestRatio {
			best, bestRatio, found = name, ratio, true
		}
	}
	return best, found
}
