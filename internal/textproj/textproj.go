// Package textproj builds the canonical text representation of each record
// kind for embedding. The builders are pure and deterministic: the same
// record always produces the same string, absent fields are omitted entirely,
// and the output is a single newline-free, period-delimited line. These
// strings are all the embedding model ever sees about an entity.
package textproj

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/pkg/utils"
)

// descriptionLimit caps free-text descriptions so one verbose field cannot
// dominate the embedding.
const descriptionLimit = 300

// ProfileText summarizes a user profile (and the optional roommate
// preferences) for embedding. Used both to index the roommate category and as
// the query text for every recommendation category.
func ProfileText(p *models.Profile, rp *models.RoommateProfile) string {
	var parts []string

	if p.FirstName != "" || p.LastName != "" {
		parts = append(parts, fmt.Sprintf("Student: %s %s", p.FirstName, p.LastName))
	}
	if p.CourseMajor != "" {
		parts = append(parts, "Major: "+p.CourseMajor)
	}
	if p.Bio != "" {
		parts = append(parts, "Bio: "+flatten(p.Bio))
	}
	if p.Interests != "" {
		parts = append(parts, "Interests: "+flatten(p.Interests))
	}

	if rp != nil {
		var lifestyle []string
		if rp.SleepHabits != "" {
			lifestyle = append(lifestyle, "sleep habits: "+rp.SleepHabits)
		}
		if rp.StudyHabits != "" {
			lifestyle = append(lifestyle, "study habits: "+rp.StudyHabits)
		}
		if rp.SmokingPreference != "" {
			lifestyle = append(lifestyle, "smoking: "+rp.SmokingPreference)
		}
		if rp.DrinkingPreference != "" {
			lifestyle = append(lifestyle, "drinking: "+rp.DrinkingPreference)
		}
		if rp.GuestsPreference != "" {
			lifestyle = append(lifestyle, "guests: "+rp.GuestsPreference)
		}
		if rp.CleanlinessLevel > 0 {
			lifestyle = append(lifestyle, fmt.Sprintf("cleanliness: %d/5", rp.CleanlinessLevel))
		}
		if rp.MaxRentBudget > 0 {
			lifestyle = append(lifestyle, fmt.Sprintf("budget: $%.2f", rp.MaxRentBudget))
		}
		if len(lifestyle) > 0 {
			parts = append(parts, "Lifestyle: "+strings.Join(lifestyle, ", "))
		}
	}

	if len(parts) == 0 {
		return "Student profile"
	}
	return strings.Join(parts, ". ")
}

// ListingText summarizes a housing listing for embedding.
func ListingText(l *models.Listing) string {
	parts := []string{
		"Housing: " + l.Title,
		"Type: " + l.HousingType,
		fmt.Sprintf("Location: %s, %s, %s", l.Address, l.City, l.State),
		fmt.Sprintf("Rent: $%.2f/month", l.RentPrice),
		fmt.Sprintf("%d bed, %d bath", l.Bedrooms, l.Bathrooms),
	}

	if l.SqFt > 0 {
		parts = append(parts, fmt.Sprintf("%d sq ft", l.SqFt))
	}
	if l.LeaseType != "" {
		parts = append(parts, "Lease: "+l.LeaseType)
	}
	if l.DistanceToCampus > 0 {
		parts = append(parts, fmt.Sprintf("Distance to campus: %s miles",
			strconv.FormatFloat(l.DistanceToCampus, 'g', -1, 64)))
	}

	var amenities []string
	if l.Furnished {
		amenities = append(amenities, "furnished")
	}
	if l.PetsAllowed {
		amenities = append(amenities, "pets allowed")
	}
	if l.Parking {
		amenities = append(amenities, "parking")
	}
	if l.Laundry {
		amenities = append(amenities, "laundry")
	}
	if l.WifiIncluded {
		amenities = append(amenities, "wifi")
	}
	if l.AC {
		amenities = append(amenities, "AC")
	}
	if l.UtilitiesIncluded {
		amenities = append(amenities, "utilities included")
	}
	if len(amenities) > 0 {
		parts = append(parts, "Amenities: "+strings.Join(amenities, ", "))
	}

	if l.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(flatten(l.Description), descriptionLimit))
	}

	return strings.Join(parts, ". ")
}

// ItemText summarizes a marketplace item for embedding.
func ItemText(i *models.Item) string {
	parts := []string{
		"Item: " + i.Title,
		"Category: " + i.ItemType,
		fmt.Sprintf("Price: $%.2f", i.Price),
		"Condition: " + i.Condition,
	}

	if i.Location != "" {
		parts = append(parts, "Location: "+i.Location)
	}
	if i.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(flatten(i.Description), descriptionLimit))
	}

	return strings.Join(parts, ". ")
}

// GroupText summarizes a study group for embedding.
func GroupText(g *models.StudyGroup) string {
	parts := []string{
		"Study Group: " + g.Name,
		"Subject: " + g.SubjectArea,
	}

	if g.CourseCode != "" {
		parts = append(parts, "Course: "+g.CourseCode)
	}
	if g.MeetingFrequency != "" {
		parts = append(parts, "Meets: "+g.MeetingFrequency)
	}
	if g.IsOnline {
		parts = append(parts, "Online group")
	} else if g.MeetingLocation != "" {
		parts = append(parts, "Location: "+g.MeetingLocation)
	}
	if g.MeetingSchedule != "" {
		parts = append(parts, "Schedule: "+g.MeetingSchedule)
	}
	if g.Description != "" {
		parts = append(parts, "Description: "+utils.Truncate(flatten(g.Description), descriptionLimit))
	}

	return strings.Join(parts, ". ")
}

// flatten collapses all whitespace runs (including newlines) to single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
