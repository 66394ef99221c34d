package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type User struct {
	gorm.Model
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	FullName     string     `json:"full_name" gorm:"default:''"`
	Email        string     `json:"email" gorm:"default:''"`
	Role         string     `json:"role" gorm:"default:'student'"` // admin, instructor, student
	Password     string     `json:"-" gorm:"not null"`
	TenantID     uint       `json:"tenant_id" gorm:"index;not null"`
	InstructorID *uint      `json:"instructor_id" gorm:"index"` // students may be bound to one instructor
	Timezone     string     `json:"timezone" gorm:"default:''"`
	LastLogin    *time.Time `json:"last_login"`
	IsDeleted    bool       `json:"is_deleted" gorm:"default:false"`
}

// EffectiveTimezone returns the user's display zone, defaulting to UTC.
func (u *User) EffectiveTimezone() string {
	if u.Timezone == "" {
		return "UTC"
	}
	return u.Timezone
}
