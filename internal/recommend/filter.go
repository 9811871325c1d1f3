package recommend

import "github.com/universeapp/universe/internal/models"

// passesHousingFilter drops unavailable listings and, when the user stated a
// rent budget, listings priced beyond the slack allowance over that budget.
func passesHousingFilter(l *models.Listing, rp *models.RoommateProfile, slackPercent int) bool {
	if !l.IsAvailable {
		return false
	}
	if rp != nil && rp.MaxRentBudget > 0 {
		limit := rp.MaxRentBudget * (1 + float64(slackPercent)/100)
		if l.RentPrice > limit {
			return false
		}
	}
	return true
}

func passesMarketplaceFilter(it *models.Item) bool {
	return !it.IsSold
}

func passesStudyGroupFilter(g *models.StudyGroup) bool {
	return g.IsActive && !g.IsFull()
}
