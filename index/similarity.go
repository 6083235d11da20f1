package index

import "math"

// Metric names the similarity function used to rank records.
type Metric string

const (
	Cosine       Metric = "COSINE"
	InnerProduct Metric = "IP"
	Euclidean    Metric = "L2"
)

// Similarity scores two vectors under the given metric. Unknown metrics
// fall back to cosine. Higher is always more similar: the L2 metric is
// folded into 1/(1+distance) so it lands in (0, 1].
func Similarity(metric Metric, a, b []float32) float64 {
	switch metric {
	case InnerProduct:
		return DotProduct(a, b)
	case Euclidean:
		return 1.0 / (1.0 + euclideanDistance(a, b))
	default:
		return CosineSimilarity(a, b)
	}
}

// CosineSimilarity returns 0 when either vector has zero norm, which also
// masks true dissimilarity for degenerate inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
	}

	return dotProduct
}

func euclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}
