package models

import "time"

// Item is a marketplace item record.
type Item struct {
	ID          int64     `json:"id" db:"id"`
	Seller      int64     `json:"seller" db:"seller"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	ItemType    string    `json:"item_type" db:"item_type"`
	Condition   string    `json:"condition" db:"condition"`
	Location    string    `json:"location" db:"location"`
	IsSold      bool      `json:"is_sold" db:"is_sold"`
	PostedDate  time.Time `json:"posted_date" db:"posted_date"`
}
