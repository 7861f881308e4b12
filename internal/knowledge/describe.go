package knowledge

import (
	"fmt"

	"github.com/kailas-cloud/campusbot/internal/domain"
)

// Describe renders a record as the Thai sentence that gets embedded. One
// template per category; missing optional fields render as empty strings so
// field positions stay stable across rows.
func Describe(cat domain.Category, r domain.Record) string {
	switch cat {
	case domain.CategoryStudent:
		return fmt.Sprintf("นักเรียนหมายเลข %s ชื่อ %s เพศ %s แผนก %s %s",
			r.Get("number"), r.Get("name"), r.Get("gender"),
			r.GetOr("department", "เทคโนโลยีสารสนเทศ"), r.GetOr("role", "นักเรียน"))
	case domain.CategoryTeacher:
		return fmt.Sprintf("อาจารย์ %s ตำแหน่ง %s เชี่ยวชาญด้าน %s สาขา %s",
			r.Get("name"), r.GetOr("position", "ครูประจำแผนก"),
			r.Get("specialize"), r.GetOr("field", "เทคโนโลยีสารสนเทศ"))
	case domain.CategoryGuestTeacher:
		return fmt.Sprintf("%s %s จาก%s มาสอนวิชา %s ให้แผนก IT",
			r.Get("name"), r.GetOr("position", "อาจารย์พิเศษ"),
			r.Get("field"), r.Get("teaches_subject"))
	case domain.CategorySchedule:
		return fmt.Sprintf("วิชา %s รหัส %s สอนโดย %s วัน%s เวลา %s-%s ห้อง %s ตึก %s %s",
			r.Get("subject_name"), r.Get("subject_code"), r.Get("teacher"),
			r.Get("day"), r.Get("time_start"), r.Get("time_end"),
			r.Get("room"), r.Get("building"), r.GetOr("type", "on-site"))
	case domain.CategorySubject:
		return fmt.Sprintf("วิชา %s รหัส %s %s หน่วยกิต %s",
			r.Get("name"), r.Get("code"), r.Get("credits"), r.Get("description"))
	case domain.CategoryFAQ:
		return fmt.Sprintf("คำถาม: %s คำตอบ: %s หมวด %s",
			r.Get("question"), r.Get("answer"), r.Get("category"))
	case domain.CategoryRoom:
		return fmt.Sprintf("ห้อง %s ตึก %s ความจุ %s คน สิ่งอำนวยความสะดวก %s แผนก %s",
			r.Get("room_number"), r.Get("building"), r.Get("capacity"),
			r.Get("facilities"), r.Get("department"))
	}
	return ""
}
