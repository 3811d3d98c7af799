package model

import (
	"time"

	"gorm.io/gorm"
)

// RoomUnitStatus is the cached occupancy hint on a physical room unit.
// It is maintained by the reconciliation job and by maintenance workflows;
// booking decisions never read it.
type RoomUnitStatus string

const (
	RoomUnitAvailable   RoomUnitStatus = "AVAILABLE"
	RoomUnitBooked      RoomUnitStatus = "BOOKED"
	RoomUnitMaintenance RoomUnitStatus = "MAINTENANCE"
)

// Hotel represents a property (tenant) on the platform
type Hotel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	City      string         `json:"city" gorm:"type:varchar(100)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Room represents a sellable room type / rate plan combination within a hotel.
// (HotelID, Name, RateType) is unique; availability lookups resolve exactly one row.
type Room struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	HotelID   uint           `json:"hotel_id" gorm:"index;not null;uniqueIndex:idx_rooms_hotel_name_rate;comment:'Hotel this room type belongs to'"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_rooms_hotel_name_rate"`
	RateType  string         `json:"rate_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_rooms_hotel_name_rate"`
	MaxGuests int            `json:"max_guests" gorm:"default:2"`
	BasePrice float64        `json:"base_price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// RoomUnit represents one physical, numbered room belonging to a Room
type RoomUnit struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	RoomID     uint           `json:"room_id" gorm:"index;not null"`
	HotelID    uint           `json:"hotel_id" gorm:"index;not null"`
	RoomNumber string         `json:"room_number" gorm:"type:varchar(20);not null"`
	Floor      int            `json:"floor"`
	Status     RoomUnitStatus `json:"status" gorm:"type:varchar(20);default:'AVAILABLE'"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Reservation represents a booked stay. It occupies its room unit for the
// half-open interval [CheckIn, CheckOut); RoomUnitID stays nil until a physical
// unit is assigned, and unassigned reservations never block availability.
type Reservation struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	HotelID     uint           `json:"hotel_id" gorm:"index;not null"`
	RoomUnitID  *uint          `json:"room_unit_id" gorm:"index"`
	RoomType    string         `json:"room_type" gorm:"type:varchar(100)"`
	RateType    string         `json:"rate_type" gorm:"type:varchar(20)"`
	GuestName   string         `json:"guest_name" gorm:"type:varchar(255)"`
	Guests      int            `json:"guests" gorm:"default:1"`
	CheckIn     time.Time      `json:"check_in" gorm:"index;not null"`
	CheckOut    time.Time      `json:"check_out" gorm:"index;not null"`
	Nights      int            `json:"nights" gorm:"not null"`
	Rooms       int            `json:"rooms" gorm:"default:1"`
	PerDayRate  float64        `json:"per_day_rate"`
	TotalAmount float64        `json:"total_amount"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// MaintenanceBlock takes a room unit out of service until ReleaseAt.
// Stored durably so pending releases survive restarts; the reconciliation job
// performs the release instead of an in-process timer.
type MaintenanceBlock struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	HotelID    uint      `json:"hotel_id" gorm:"index;not null"`
	RoomUnitID uint      `json:"room_unit_id" gorm:"index;not null"`
	StartAt    time.Time `json:"start_at" gorm:"not null"`
	ReleaseAt  time.Time `json:"release_at" gorm:"index;not null"`
	Notes      string    `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
