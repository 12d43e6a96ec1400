package models

import (
	"time"

	"gorm.io/gorm"
)

type SpaceStatus string

const (
	SpaceFree   SpaceStatus = "free"
	SpaceBooked SpaceStatus = "booked"
)

// Space is a bookable physical space. Its status flag is a coarse
// availability hint derived from confirmed events; the authoritative
// record is always the Event table.
type Space struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Location     string         `json:"location"`
	Capacity     int            `json:"capacity" gorm:"default:1"`
	Description  string         `json:"description"`
	Equipment    string         `json:"equipment"`
	Features     string         `json:"features"`
	PricePerHour float64        `json:"price_per_hour" gorm:"type:numeric(10,2);default:0"`
	Status       SpaceStatus    `json:"status" gorm:"default:'free'"`
	OrganizerID  *uint          `json:"organizer_id"`
	Organizer    *User          `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Events []Event `json:"events,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
