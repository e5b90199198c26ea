package controllers

import (
	"testing"
	"time"

	"coursemarket/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 4.5, AverageRating(nil))
	assert.Equal(t, 4.5, AverageRating([]int{}))
	assert.Equal(t, 4.0, AverageRating([]int{3, 5}))
	assert.Equal(t, 5.0, AverageRating([]int{5}))
	assert.InDelta(t, 3.6666, AverageRating([]int{3, 4, 4}), 0.001)
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(0, 0))
	assert.Equal(t, 0, ProgressPercent(0, 5))
	assert.Equal(t, 33, ProgressPercent(1, 3))
	assert.Equal(t, 67, ProgressPercent(2, 3))
	assert.Equal(t, 100, ProgressPercent(3, 3))
	assert.Equal(t, 50, ProgressPercent(1, 2))
}

func TestNextIncompleteLesson(t *testing.T) {
	lessons := []models.Lesson{
		{Title: "A"},
		{Title: "B"},
		{Title: "C"},
	}
	lessons[0].ID = 1
	lessons[1].ID = 2
	lessons[2].ID = 3

	assert.Equal(t, "A", NextIncompleteLesson(lessons, nil))
	assert.Equal(t, "B", NextIncompleteLesson(lessons, map[uint]bool{1: true}))
	assert.Equal(t, "C", NextIncompleteLesson(lessons, map[uint]bool{1: true, 2: true}))
	assert.Equal(t, "Course completed!", NextIncompleteLesson(lessons, map[uint]bool{1: true, 2: true, 3: true}))
	assert.Equal(t, "Course completed!", NextIncompleteLesson(nil, nil))

	// Skips over a gap: only the completed set matters, not contiguity.
	assert.Equal(t, "A", NextIncompleteLesson(lessons, map[uint]bool{2: true}))
}

func TestFormatLastAccessed(t *testing.T) {
	assert.Equal(t, "Never", FormatLastAccessed(nil))

	ts := time.Date(2024, time.March, 7, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar 7, 2024", FormatLastAccessed(&ts))
}

func TestSortCourseSummaries(t *testing.T) {
	build := func() []CourseSummary {
		return []CourseSummary{
			{Title: "mid", Price: 50, AverageRating: 4.0, EnrollmentCount: 10},
			{Title: "cheap", Price: 10, AverageRating: 4.8, EnrollmentCount: 3},
			{Title: "dear", Price: 90, AverageRating: 3.2, EnrollmentCount: 25},
		}
	}

	titles := func(summaries []CourseSummary) []string {
		out := make([]string, len(summaries))
		for i, summary := range summaries {
			out[i] = summary.Title
		}
		return out
	}

	summaries := build()
	sortCourseSummaries(summaries, "price-low")
	assert.Equal(t, []string{"cheap", "mid", "dear"}, titles(summaries))

	summaries = build()
	sortCourseSummaries(summaries, "price-high")
	assert.Equal(t, []string{"dear", "mid", "cheap"}, titles(summaries))

	summaries = build()
	sortCourseSummaries(summaries, "rating")
	assert.Equal(t, []string{"cheap", "mid", "dear"}, titles(summaries))

	summaries = build()
	sortCourseSummaries(summaries, "popularity")
	assert.Equal(t, []string{"dear", "mid", "cheap"}, titles(summaries))

	// Unknown keys leave the order untouched.
	summaries = build()
	sortCourseSummaries(summaries, "newest")
	assert.Equal(t, []string{"mid", "cheap", "dear"}, titles(summaries))

	// Stable: equal keys keep their relative order.
	equal := []CourseSummary{
		{Title: "first", Price: 20},
		{Title: "second", Price: 20},
	}
	sortCourseSummaries(equal, "price-low")
	assert.Equal(t, []string{"first", "second"}, titles(equal))
}
