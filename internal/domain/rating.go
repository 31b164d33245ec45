package domain

// MaxRating is the upper bound of a product rating.
const MaxRating = 5.0

// AverageRating returns the unweighted mean of the review ratings, or 0 when
// there are no reviews. The result is clamped to [0, MaxRating].
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return ClampRating(sum / float64(len(reviews)))
}

// ClampRating bounds a rating to [0, MaxRating].
func ClampRating(rating float64) float64 {
	switch {
	case rating < 0:
		return 0
	case rating > MaxRating:
		return MaxRating
	default:
		return rating
	}
}
