package domain

import (
	"errors"
	"time"
)

var (
	ErrAutoNotFound      = errors.New("auto not found")
	ErrInvalidAutoStatus = errors.New("invalid auto status")
)

type AutoStatus string

const (
	AutoAvailable AutoStatus = "available"
	AutoReserved  AutoStatus = "reserved"
	AutoSold      AutoStatus = "sold"
)

func (s AutoStatus) Valid() bool {
	switch s {
	case AutoAvailable, AutoReserved, AutoSold:
		return true
	}
	return false
}

type Auto struct {
	ID          string
	Brand       string
	Model       string
	Year        *int     // nil means unknown
	Price       *float64 // nil means "ask"
	Status      AutoStatus
	Description *string
	CreatedBy   *string // account that listed it; nil for seeded rows

	CreatedAt time.Time
	UpdatedAt time.Time
}
