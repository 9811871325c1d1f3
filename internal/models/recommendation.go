package models

// Recommendation is a single ranked hit: the entity id (user id for the
// roommate category) and its cosine similarity score. Score is 0.0 on the
// recency fallback path.
type Recommendation struct {
	ID    int64   `json:"id"`
	Score float64 `json:"similarity_score"`
}
