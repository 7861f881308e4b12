// Package tabular holds the immutable snapshot of all record collections
// loaded from the spreadsheet source.
package tabular

import "github.com/kailas-cloud/campusbot/internal/domain"

// Snapshot is one complete load of the seven collections. A Snapshot is
// never mutated after construction; a reload builds a new one and swaps it
// in whole.
type Snapshot struct {
	Students      []domain.Record
	Teachers      []domain.Record
	GuestTeachers []domain.Record
	Schedule      []domain.Record
	Subjects      []domain.Record
	FAQs          []domain.Record
	Rooms         []domain.Record
}

// Collection returns the records for a category.
func (s *Snapshot) Collection(cat domain.Category) []domain.Record {
	switch cat {
	case domain.CategoryStudent:
		return s.Students
	case domain.CategoryTeacher:
		return s.Teachers
	case domain.CategoryGuestTeacher:
		return s.GuestTeachers
	case domain.CategorySchedule:
		return s.Schedule
	case domain.CategorySubject:
		return s.Subjects
	case domain.CategoryFAQ:
		return s.FAQs
	case domain.CategoryRoom:
		return s.Rooms
	}
	return nil
}

// Counts holds per-category record counts, recomputed from the snapshot on
// every call site that needs them (never cached across reloads).
type Counts struct {
	Students      int `json:"students"`
	Teachers      int `json:"teachers"`
	GuestTeachers int `json:"guestTeachers"`
	Schedule      int `json:"schedule"`
	Subjects      int `json:"subjects"`
	FAQs          int `json:"faqs"`
	Rooms         int `json:"rooms"`
}

// Counts returns the per-category sizes of the snapshot.
func (s *Snapshot) Counts() Counts {
	return Counts{
		Students:      len(s.Students),
		Teachers:      len(s.Teachers),
		GuestTeachers: len(s.GuestTeachers),
		Schedule:      len(s.Schedule),
		Subjects:      len(s.Subjects),
		FAQs:          len(s.FAQs),
		Rooms:         len(s.Rooms),
	}
}

// Total returns the number of records across all categories.
func (c Counts) Total() int {
	return c.Students + c.Teachers + c.GuestTeachers + c.Schedule +
		c.Subjects + c.FAQs + c.Rooms
}
