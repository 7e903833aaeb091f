package retrieval

import "github.com/jonathan/job-match-agent/internal/config"

// Bounds for size-adaptive retrieval depth. initialK is the vector search
// breadth, finalK the rerank breadth.
const (
	initialKRatio = 0.3
	initialKMin   = 20
	initialKMax   = 200

	finalKRatio = 0.1
	finalKMin   = 5
	finalKMax   = 50
)

// Depth computes retrieval depth scaled to the collection size. Explicit
// preference overrides take precedence verbatim; otherwise
// initialK = clamp(size*0.3, 20, 200) and finalK = clamp(size*0.1, 5, 50),
// with finalK additionally capped at initialK.
func Depth(collectionSize int, prefs *config.Preferences) (initialK, finalK int) {
	initialK = clamp(int(float64(collectionSize)*initialKRatio), initialKMin, initialKMax)
	finalK = clamp(int(float64(collectionSize)*finalKRatio), finalKMin, finalKMax)

	if prefs != nil {
		if prefs.InitialK > 0 {
			initialK = prefs.InitialK
		}
		if prefs.FinalK > 0 {
			finalK = prefs.FinalK
		}
	}

	if finalK > initialK {
		finalK = initialK
	}
	return initialK, finalK
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
