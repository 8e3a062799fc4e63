// Package lipmaa computes Bamboo's skip-link target for a given sequence
// number: the earlier entry each entry additionally hashes, chosen so
// that repeatedly following skip links from any seq reaches 1 in
// O(log seq) steps.
//
// Sequence numbers partition into self-similar base-3 "blocks": block k
// starts at blockStart(k) = 1 + (3^k-1)/2 and contains 3^k consecutive
// sequence numbers. A seq at the start of a sub-block of its block skips
// straight to the end of the previous block; otherwise it recurses one
// ternary level down into its sub-block.
package lipmaa

// Lipmaa returns the skip-link target for seq. seq must be >= 1. For
// seq <= 1 it returns 1, a sentinel never actually referenced by a real
// link field (the first entry in a log has neither a backlink nor a
// lipmaa link).
func Lipmaa(seq uint64) uint64 {
	if seq <= 1 {
		return 1
	}

	blockStart, blockSize := uint64(1), uint64(1)
	for blockStart+blockSize <= seq {
		blockStart += blockSize
		blockSize *= 3
	}

	return target(blockStart, blockSize, seq-blockStart)
}

// target returns the skip-link target for position p (0-indexed) within
// a block of blockSize entries starting at blockStart.
func target(blockStart, blockSize, p uint64) uint64 {
	subSize := blockSize / 3
	localP := p % subSize
	if localP == 0 {
		return blockStart - 1
	}
	subIndex := p / subSize
	sub := Lipmaa(localP + 1)
	return blockStart + subIndex*subSize + sub - 1
}

// IsRequired reports whether seq's lipmaa link target differs from its
// immediate predecessor. When false, the lipmaa target equals the
// backlink target and the encoded entry omits the separate lipmaa hash.
func IsRequired(seq uint64) bool {
	if seq <= 1 {
		return false
	}
	return Lipmaa(seq) != seq-1
}
