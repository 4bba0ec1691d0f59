package imgqa

import (
	"image"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// imageHash returns the dHash of img, or nil when hashing fails.
func imageHash(img image.Image) *goimagehash.ImageHash {
	if img == nil {
		return nil
	}
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil
	}
	return h
}

// markDuplicates walks hashes in order and returns, for every position, the
// index of the earlier image it duplicates or -1. Nil hashes never match.
func markDuplicates(hashes []*goimagehash.ImageHash) []int {
	dupOf := make([]int, len(hashes))
	var seen []int
	for i, h := range hashes {
		dupOf[i] = -1
		if h == nil {
			continue
		}
		for _, j := range seen {
			dist, err := h.Distance(hashes[j])
			if err == nil && dist < dedupThreshold {
				dupOf[i] = j
				break
			}
		}
		if dupOf[i] < 0 {
			seen = append(seen, i)
		}
	}
	return dupOf
}
