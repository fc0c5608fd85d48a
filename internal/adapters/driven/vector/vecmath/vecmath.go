// Package vecmath holds the vector arithmetic shared by the embedded
// vector indexes: blob encoding, cosine distance and top-k selection.
package vecmath

import (
	"encoding/binary"
	"math"
	"sort"
)

// Encode converts a []float32 to little-endian bytes for storage.
func Encode(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Decode converts bytes written by Encode back to []float32.
// Trailing bytes that do not form a whole float are ignored.
func Decode(blob []byte) []float32 {
	if len(blob) < 4 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

// Norm returns the L2 norm of vec.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineDistance returns 1 - cosine similarity, in [0, 2]. Lower is closer.
// A zero vector is at distance 1 from everything. Vectors of different
// length are at the maximum distance.
func CosineDistance(a, b []float32) float64 {
	return CosineDistanceWithNorms(a, b, Norm(a), Norm(b))
}

// CosineDistanceWithNorms is CosineDistance with precomputed norms.
func CosineDistanceWithNorms(a, b []float32, normA, normB float64) float64 {
	if len(a) != len(b) {
		return 2
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	d := 1 - dot/(normA*normB)
	// Rounding can push identical vectors slightly below zero.
	return math.Min(2, math.Max(0, d))
}

// Scored pairs a position with its distance.
type Scored struct {
	Index    int
	Distance float64
}

// TopK returns the k entries with the smallest distance, closest first.
// Ties keep their original order.
func TopK(scored []Scored, k int) []Scored {
	if k <= 0 {
		return nil
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
