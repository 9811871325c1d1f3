// Package e2e exercises the full recommendation flow over a seeded campus corpus.
package e2e

import (
	"context"
	"fmt"

	"github.com/universeapp/universe/internal/models"
	"github.com/universeapp/universe/internal/repo"
)

// User pairs a profile with its optional roommate preferences.
type User struct {
	Profile  models.Profile
	Roommate *models.RoommateProfile
}

// Corpus holds the records seeded into the repository before each scenario.
// Record IDs are filled in by Seed.
type Corpus struct {
	Users    []User
	Listings []models.Listing
	Items    []models.Item
	Groups   []models.StudyGroup
}

// BuildCorpus returns a corpus spanning every category, with warm profiles,
// a cold-start profile, ineligible records of each kind, and enough volume
// that top-k truncation and over-fetching are both exercised.
func BuildCorpus() *Corpus {
	c := &Corpus{}

	budget := 1200.0
	c.Users = []User{
		{
			Profile: models.Profile{
				UserID: 101, FirstName: "Maya", LastName: "Chen",
				CourseMajor: "Computer Science",
				Interests:   "climbing, board games, synthesizers",
				Bio:         "Third-year CS student looking for a quiet place near campus.",
			},
			Roommate: &models.RoommateProfile{
				UserID: 101, SmokingPreference: "no", DrinkingPreference: "socially",
				SleepHabits: "early_bird", StudyHabits: "library",
				GuestsPreference: "occasionally", CleanlinessLevel: 4,
				MaxRentBudget: budget,
			},
		},
		{
			Profile: models.Profile{
				UserID: 102, FirstName: "Diego", LastName: "Alvarez",
				CourseMajor: "Organic Chemistry",
				Interests:   "soccer, cooking, volunteering at the lab",
				Bio:         "Chem major hunting for study partners and cheap textbooks.",
			},
			Roommate: &models.RoommateProfile{
				UserID: 102, SmokingPreference: "no", DrinkingPreference: "never",
				SleepHabits: "night_owl", StudyHabits: "home",
				GuestsPreference: "rarely", CleanlinessLevel: 5,
			},
		},
		{
			Profile: models.Profile{
				UserID: 103, FirstName: "Priya", LastName: "Nair",
				CourseMajor: "Economics",
				Interests:   "debate club, running, photography",
				Bio:         "Econ senior, selling furniture before graduation.",
			},
		},
		{
			// Cold start: empty bio, no interests, no major, no roommate profile.
			Profile: models.Profile{UserID: 104, FirstName: "Sam", LastName: "Okafor"},
		},
	}

	rents := []float64{650, 800, 950, 1100, 1250, 1400, 1600, 1850, 2100, 2400}
	for i, rent := range rents {
		c.Listings = append(c.Listings, models.Listing{
			PostedBy:    103,
			Title:       fmt.Sprintf("%d-bedroom near campus #%d", 1+i%3, i+1),
			Description: "Walkable to lecture halls, shared kitchen, fast wifi.",
			HousingType: "apartment",
			Address:     fmt.Sprintf("%d College Ave", 100+i),
			City:        "Hillside",
			State:       "CA",
			RentPrice:   rent,
			Bedrooms:    1 + i%3,
			Bathrooms:   1,
			LeaseType:   "12_months",
			IsAvailable: true,
		})
	}
	// Cheap but already taken; must never be recommended.
	c.Listings = append(c.Listings, models.Listing{
		PostedBy: 103, Title: "Sunny studio downtown", Description: "Already leased.",
		HousingType: "studio", City: "Hillside", State: "CA",
		RentPrice: 700, Bedrooms: 1, Bathrooms: 1, IsAvailable: false,
	})

	itemTitles := []string{
		"Organic chemistry textbook, 4th edition",
		"Desk lamp with USB charger",
		"Mini fridge, barely used",
		"Acoustic guitar with soft case",
		"Graphing calculator TI-84",
		"Mountain bike, medium frame",
	}
	for i, title := range itemTitles {
		c.Items = append(c.Items, models.Item{
			Seller:      101,
			Title:       title,
			Description: "Pickup on campus, cash or transfer.",
			Price:       float64(20 + 15*i),
			ItemType:    "general",
			Condition:   "good",
			Location:    "student center",
			IsSold:      false,
		})
	}
	c.Items = append(c.Items, models.Item{
		Seller: 103, Title: "Microwave, works fine", Description: "Gone already.",
		Price: 25, ItemType: "appliance", Condition: "fair", IsSold: true,
	})

	c.Groups = []models.StudyGroup{
		{
			Creator: 102, Name: "Orgo Problem Sets", CourseCode: "CHEM 233",
			SubjectArea: "Organic Chemistry",
			Description: "Weekly run through the problem sets before each midterm.",
			MaxMembers:  8, MeetingLocation: "Science Library 2F",
			MeetingSchedule: "Tuesdays 6pm", MeetingFrequency: "weekly",
			IsActive: true,
		},
		{
			Creator: 101, Name: "Algorithms Practice", CourseCode: "CS 351",
			SubjectArea: "Computer Science",
			Description: "Whiteboard practice for technical interviews.",
			MaxMembers:  6, MeetingLocation: "Engineering Hall 104",
			MeetingSchedule: "Saturdays 10am", MeetingFrequency: "weekly",
			IsActive: true,
		},
		{
			// Solo group: creator fills the only seat, so it is always full.
			Creator: 103, Name: "Econometrics Duo", CourseCode: "ECON 420",
			SubjectArea: "Economics", Description: "Two-person problem set swap.",
			MaxMembers: 1, IsActive: true,
		},
		{
			Creator: 103, Name: "Disbanded Film Club", CourseCode: "FILM 101",
			SubjectArea: "Film Studies", Description: "No longer meeting.",
			MaxMembers: 10, IsActive: false,
		},
	}

	return c
}

// Seed inserts every corpus record through the repository, filling in IDs.
func (c *Corpus) Seed(ctx context.Context, r repo.Repository) error {
	for i := range c.Users {
		if err := r.CreateProfile(ctx, &c.Users[i].Profile); err != nil {
			return fmt.Errorf("seed profile %d: %w", c.Users[i].Profile.UserID, err)
		}
		if rp := c.Users[i].Roommate; rp != nil {
			if err := r.UpsertRoommateProfile(ctx, rp); err != nil {
				return fmt.Errorf("seed roommate profile %d: %w", rp.UserID, err)
			}
		}
	}
	for i := range c.Listings {
		if err := r.CreateListing(ctx, &c.Listings[i]); err != nil {
			return fmt.Errorf("seed listing %q: %w", c.Listings[i].Title, err)
		}
	}
	for i := range c.Items {
		if err := r.CreateItem(ctx, &c.Items[i]); err != nil {
			return fmt.Errorf("seed item %q: %w", c.Items[i].Title, err)
		}
	}
	for i := range c.Groups {
		if err := r.CreateStudyGroup(ctx, &c.Groups[i]); err != nil {
			return fmt.Errorf("seed group %q: %w", c.Groups[i].Name, err)
		}
	}
	return nil
}

// ListingByTitle returns the seeded listing with the given title, or nil.
func (c *Corpus) ListingByTitle(title string) *models.Listing {
	for i := range c.Listings {
		if c.Listings[i].Title == title {
			return &c.Listings[i]
		}
	}
	return nil
}

// ItemByTitle returns the seeded item with the given title, or nil.
func (c *Corpus) ItemByTitle(title string) *models.Item {
	for i := range c.Items {
		if c.Items[i].Title == title {
			return &c.Items[i]
		}
	}
	return nil
}

// GroupByName returns the seeded study group with the given name, or nil.
func (c *Corpus) GroupByName(name string) *models.StudyGroup {
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			return &c.Groups[i]
		}
	}
	return nil
}
