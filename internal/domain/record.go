package domain

// Category identifies which tabular source a record came from.
type Category string

// The seven record categories, in their fixed load order.
const (
	CategoryStudent      Category = "student"
	CategoryTeacher      Category = "teacher"
	CategoryGuestTeacher Category = "guest_teacher"
	CategorySchedule     Category = "schedule"
	CategorySubject      Category = "subject"
	CategoryFAQ          Category = "faq"
	CategoryRoom         Category = "room"
)

// Categories returns all categories in the fixed load/iteration order.
func Categories() []Category {
	return []Category{
		CategoryStudent,
		CategoryTeacher,
		CategoryGuestTeacher,
		CategorySchedule,
		CategorySubject,
		CategoryFAQ,
		CategoryRoom,
	}
}

// Record is one row from a tabular source: header name -> cell value.
// Records are immutable once loaded; a reload replaces whole collections.
type Record map[string]string

// Get returns the value for key, or "" if the column is absent.
func (r Record) Get(key string) string {
	return r[key]
}

// GetOr returns the value for key, or fallback if the cell is empty or absent.
func (r Record) GetOr(key, fallback string) string {
	if v := r[key]; v != "" {
		return v
	}
	return fallback
}
