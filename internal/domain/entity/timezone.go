package entity

import (
	"time"

	"gorm.io/gorm"
)

// Timezone holds the IANA timezone for an airport, used to resolve local
// departure and arrival times into offsets.
type Timezone struct {
	ID          uint
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	GmtTz       string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}
