package models

import "time"

// Listing is a housing listing record.
type Listing struct {
	ID               int64     `json:"id" db:"id"`
	PostedBy         int64     `json:"posted_by" db:"posted_by"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	HousingType      string    `json:"housing_type" db:"housing_type"`
	Address          string    `json:"address" db:"address"`
	City             string    `json:"city" db:"city"`
	State            string    `json:"state" db:"state"`
	ZipCode          string    `json:"zip_code" db:"zip_code"`
	DistanceToCampus float64   `json:"distance_to_campus,omitempty" db:"distance_to_campus"` // miles; 0 = unknown
	RentPrice        float64   `json:"rent_price" db:"rent_price"`
	Bedrooms         int       `json:"bedrooms" db:"bedrooms"`
	Bathrooms        int       `json:"bathrooms" db:"bathrooms"`
	SqFt             int       `json:"sq_ft,omitempty" db:"sq_ft"` // 0 = unknown
	LeaseType        string    `json:"lease_type" db:"lease_type"`
	Furnished        bool      `json:"furnished" db:"furnished"`
	PetsAllowed      bool      `json:"pets_allowed" db:"pets_allowed"`
	Parking          bool      `json:"parking" db:"parking"`
	Laundry          bool      `json:"laundry" db:"laundry"`
	WifiIncluded     bool      `json:"wifi_included" db:"wifi_included"`
	AC               bool      `json:"ac" db:"ac"`
	UtilitiesIncluded bool     `json:"utilities_included" db:"utilities_included"`
	IsAvailable      bool      `json:"is_available" db:"is_available"`
	PostedDate       time.Time `json:"posted_date" db:"posted_date"`
	UpdatedDate      time.Time `json:"updated_date" db:"updated_date"`
}
