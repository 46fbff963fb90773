package domain

import (
	"hash/fnv"
	"io"
)

// bucketBits is the number of hash bits used for the [0,1) mantissa.
const bucketBits = 53

// Bucket maps a subject key and test id to a deterministic value in [0,1).
// Same inputs always produce the same output, across processes and restarts:
// no seed, no machine-local state. FNV-1a gives the uniformity needed for
// traffic splits; cryptographic strength is not required.
func Bucket(subjectKey, testID string) float64 {
	h := fnv.New64a()
	_, _ = io.WriteString(h, subjectKey)
	_, _ = h.Write([]byte{':'})
	_, _ = io.WriteString(h, testID)
	return float64(h.Sum64()>>(64-bucketBits)) / float64(uint64(1)<<bucketBits)
}

// variantKeySuffix separates the variant draw from the inclusion draw so a
// subject's position on the splits is independent of whether they passed
// the traffic allocation gate.
const variantKeySuffix = "_variant"

// VariantBucket is the draw that positions an included subject on a test's
// variant splits. Anything replaying the assignment (dry runs, audits) must
// use this, not Bucket directly, so the key derivation stays in one place.
func VariantBucket(subjectID, testID string) float64 {
	return Bucket(subjectID+variantKeySuffix, testID)
}
