// Package classify decides, from the raw question text, whether a question
// needs a full-dataset answer and which category it is about.
package classify

import "strings"

// QueryType is the coarse category a question resolves to.
type QueryType string

const (
	TypeStudent  QueryType = "student"
	TypeTeacher  QueryType = "teacher"
	TypeSchedule QueryType = "schedule"
	TypeSubject  QueryType = "subject"
	TypeRoom     QueryType = "room"
	TypeGeneral  QueryType = "general"
)

// Analysis is the classification of one question. Stateless, recomputed per
// request.
type Analysis struct {
	NeedsFullDataset bool
	QueryType        QueryType
	Category         string
}

// countKeywords signal counting/aggregation intent: top-K retrieval over a
// handful of rows cannot answer "how many", so these force the exhaustive
// full-dataset branch.
var countKeywords = []string{
	"กี่คน", "ทั้งหมด", "จำนวน", "มีกี่", "นับ", "ทั้งหมดกี่", "รายชื่อ",
}

// categoryRules map keywords to a query type, checked in priority order:
// first match wins. A question mentioning both teacher and schedule terms
// resolves to teacher because its rule is checked first after student.
var categoryRules = []struct {
	queryType QueryType
	category  string
	keywords  []string
}{
	{TypeStudent, "students", []string{"นักเรียน", "นักศึกษา", "ผู้เรียน"}},
	{TypeTeacher, "teachers", []string{"อาจารย์", "ครู", "ผู้สอน"}},
	{TypeSchedule, "schedule", []string{"ตาราง", "เรียน", "วัน", "เวลา"}},
	{TypeSubject, "subjects", []string{"วิชา", "รายวิชา"}},
	{TypeRoom, "rooms", []string{"ห้อง", "ตึก"}},
}

// Classify inspects the question text. Pure and deterministic.
func Classify(question string) Analysis {
	analysis := Analysis{
		QueryType: TypeGeneral,
		Category:  "general",
	}

	for _, kw := range countKeywords {
		if strings.Contains(question, kw) {
			analysis.NeedsFullDataset = true
			break
		}
	}

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(question, kw) {
				analysis.QueryType = rule.queryType
				analysis.Category = rule.category
				return analysis
			}
		}
	}

	return analysis
}
