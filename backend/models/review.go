package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	UserID   uint `gorm:"index"`
	CourseID uint `gorm:"index"`
	Rating   int  `gorm:"check:rating>=1 AND rating<=5"`
	Comment  string
}
