package models

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress records per-lesson completion for a user. CompletionDate
// is set when Completed flips to true and cleared when it flips back.
type LessonProgress struct {
	gorm.Model
	UserID         uint `gorm:"index;not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID       uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	Completed      bool `gorm:"default:false"`
	CompletionDate *time.Time
}
