package recommend

import (
	"strings"

	"github.com/universeapp/universe/internal/models"
)

// signalCount measures profile completeness. Each of bio, interests, major
// and roommate preferences contributes one signal when substantial enough
// to embed meaningfully.
func signalCount(p *models.Profile, rp *models.RoommateProfile) int {
	signals := 0
	if len(strings.TrimSpace(p.Bio)) > 10 {
		signals++
	}
	if len(strings.TrimSpace(p.Interests)) > 5 {
		signals++
	}
	if len(strings.TrimSpace(p.CourseMajor)) > 2 {
		signals++
	}
	if rp != nil {
		signals++
	}
	return signals
}

// IsColdStart reports whether a profile is too sparse for semantic matching.
// Fewer than two signals means recency fallback instead of vector search.
func IsColdStart(p *models.Profile, rp *models.RoommateProfile) bool {
	return signalCount(p, rp) < 2
}
