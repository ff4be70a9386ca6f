package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee is hard-deleted; there is intentionally no DeletedAt column.
type Employee struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	FirstName  string     `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName   string     `gorm:"type:varchar(50)" json:"last_name"`
	Email      string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Phone      string     `gorm:"type:varchar(20)" json:"phone"`
	Department string     `gorm:"type:varchar(50)" json:"department"`
	Position   string     `gorm:"type:varchar(50)" json:"position"`
	Salary     *float64   `json:"salary"`
	DateJoined *time.Time `gorm:"type:date" json:"date_joined"`
	ProfilePic string     `gorm:"type:varchar(200)" json:"profile_pic"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FullName joins first and last name, skipping an empty last name.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// BeforeCreate defaults DateJoined to the current UTC date.
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.DateJoined == nil {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		e.DateJoined = &today
	}
	return nil
}
