package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment grants a user ongoing access to a course. A (user, course)
// pair holds at most one enrollment, and never an enrollment and a cart
// item at the same time.
type Enrollment struct {
	gorm.Model
	UserID       uint `gorm:"index;not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID     uint `gorm:"index;not null;uniqueIndex:idx_enrollment_user_course"`
	LastAccessed *time.Time
}

// CartItem stages a course the user intends to enroll in. Rows are
// hard-deleted so the unique index never blocks re-adding a course.
type CartItem struct {
	gorm.Model
	UserID   uint `gorm:"index;not null;uniqueIndex:idx_cart_user_course"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_cart_user_course"`
}
