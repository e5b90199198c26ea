package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title         string
	Description   string
	InstructorID  uint `gorm:"index"`
	Price         float64
	OriginalPrice *float64
	Category      string
	Level         string // Beginner, Intermediate, Advanced
	Duration      string
	ImageURL      string
	Published     bool `gorm:"default:false"`
	Sections      []Section
}

// Section groups the lessons of a course in display order.
type Section struct {
	gorm.Model
	CourseID      uint `gorm:"index"`
	Title         string
	SequenceOrder int
	Lessons       []Lesson
}

type Lesson struct {
	gorm.Model
	SectionID     uint `gorm:"index"`
	Title         string
	Duration      string
	SequenceOrder int
	IsPreview     bool `gorm:"default:false"`
	VideoURL      string
}
