// Package contextbuild assembles the textual context block injected into
// the generation prompt: static campus facts plus either a full-table
// digest or a top-K retrieval digest.
package contextbuild

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/knowledge"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
	"github.com/kailas-cloud/campusbot/internal/usecase/classify"
)

// The gender summary recognizes exactly these two literals; any other value
// is left out of the summary on purpose.
const (
	genderMale   = "ชาย"
	genderFemale = "หญิง"
)

// Result is the context block plus the dataset summary line, both injected
// into the prompt.
type Result struct {
	Context     string
	DatasetInfo string
}

// Builder renders generation context from the currently published snapshot.
type Builder struct {
	store  *knowledge.Store
	campus string
	fanOut int
}

// NewBuilder creates a context builder. fanOut is the fixed retrieval width
// for the non-aggregate branch.
func NewBuilder(store *knowledge.Store, campus domain.Campus, fanOut int) *Builder {
	return &Builder{
		store:  store,
		campus: renderCampus(campus),
		fanOut: fanOut,
	}
}

// Build produces the context for one question. Aggregate questions get an
// exhaustive per-category digest — similarity search over a few dozen rows
// cannot reliably answer "how many X". Everything else gets the top-K
// retrieval digest. DatasetInfo is recomputed from the live snapshot either
// way.
func (b *Builder) Build(analysis classify.Analysis, queryVec []float32) Result {
	st := b.store.Current()

	if analysis.NeedsFullDataset {
		info := b.fullDataset(st.Snapshot, analysis.QueryType)
		return Result{
			Context:     b.campus + "\n" + info,
			DatasetInfo: info,
		}
	}

	top := st.Index.Search(queryVec, b.fanOut, "")
	texts := make([]string, len(top))
	for i, r := range top {
		texts[i] = r.Entry.Text
	}

	counts := st.Snapshot.Counts()
	return Result{
		Context: b.campus + "\n\nข้อมูลที่เกี่ยวข้อง:\n" + strings.Join(texts, "\n"),
		DatasetInfo: fmt.Sprintf(
			"(ข้อมูลในระบบ: %d นักเรียน, %d อาจารย์ประจำแผนก, %d อาจารย์พิเศษ, %d ตารางเรียน)",
			counts.Students, counts.Teachers, counts.GuestTeachers, counts.Schedule),
	}
}

func (b *Builder) fullDataset(snap *tabular.Snapshot, queryType classify.QueryType) string {
	switch queryType {
	case classify.TypeStudent:
		return studentDigest(snap.Students)
	case classify.TypeTeacher:
		return teacherDigest(snap.Teachers, snap.GuestTeachers)
	case classify.TypeSchedule:
		return scheduleDigest(snap.Schedule)
	default:
		return summaryDigest(snap.Counts())
	}
}

// studentDigest enumerates every student and appends a count-by-gender
// summary over the two recognized literals.
func studentDigest(students []domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "นักเรียนทั้งหมด %d คน:\n", len(students))

	lines := make([]string, len(students))
	for i, s := range students {
		lines[i] = fmt.Sprintf("- หมายเลข %s: %s (%s) %s",
			s.Get("number"), s.Get("name"), s.Get("gender"), s.GetOr("role", "นักเรียน"))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	var male, female int
	for _, s := range students {
		switch s.Get("gender") {
		case genderMale:
			male++
		case genderFemale:
			female++
		}
	}
	fmt.Fprintf(&sb, "\n\nสรุป: ชาย %d คน, หญิง %d คน", male, female)

	return sb.String()
}

// teacherDigest enumerates department teachers, then guest teachers as a
// separate block when any exist — department-teacher questions must exclude
// guests, so the two groups never mix.
func teacherDigest(teachers, guests []domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "อาจารย์ประจำแผนก IT ทั้งหมด %d คน:\n", len(teachers))

	lines := make([]string, len(teachers))
	for i, t := range teachers {
		lines[i] = fmt.Sprintf("- %s (%s) เชี่ยวชาญ %s",
			t.Get("name"), t.GetOr("position", "ครูประจำแผนก"), t.Get("specialize"))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	if len(guests) > 0 {
		fmt.Fprintf(&sb, "\n\nอาจารย์พิเศษ/ผู้บริหารที่มาสอน %d คน:\n", len(guests))
		guestLines := make([]string, len(guests))
		for i, g := range guests {
			guestLines[i] = fmt.Sprintf("- %s (%s) สอนวิชา %s",
				g.Get("name"), g.Get("position"), g.Get("teaches_subject"))
		}
		sb.WriteString(strings.Join(guestLines, "\n"))
	}

	return sb.String()
}

func scheduleDigest(schedule []domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ตารางเรียนทั้งหมด %d รายการ:\n", len(schedule))

	lines := make([]string, len(schedule))
	for i, sc := range schedule {
		lines[i] = fmt.Sprintf("- วัน%s %s-%s: %s โดย %s ห้อง %s",
			sc.Get("day"), sc.Get("time_start"), sc.Get("time_end"),
			sc.Get("subject_name"), sc.Get("teacher"), sc.Get("room"))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	return sb.String()
}

// summaryDigest is the aggregate fallback for subject/room/general: numeric
// counts only, no enumeration.
func summaryDigest(counts tabular.Counts) string {
	return fmt.Sprintf(`
สรุปข้อมูลทั้งหมด:
- นักเรียน: %d คน
- อาจารย์ประจำแผนก IT: %d คน
- อาจารย์พิเศษ/ผู้บริหาร: %d คน
- ตารางเรียน: %d รายการ
- วิชาเรียน: %d วิชา
`, counts.Students, counts.Teachers, counts.GuestTeachers, counts.Schedule, counts.Subjects)
}

func renderCampus(c domain.Campus) string {
	return fmt.Sprintf(`
ข้อมูลวิทยาลัย:
- ชื่อ: %s (%s)
- ผู้อำนวยการ: %s
- หัวหน้าแผนก IT: %s
- รองหัวหน้าแผนก IT: %s
- หัวหน้าห้อง: %s
- รองหัวหน้าห้อง: %s
- อีเมลแผนก: %s
- เบอร์โทร: %s

ช่วงเวลาเรียน:
%s
%s
%s
%s
`, c.Name, c.ShortName, c.Director, c.DepartmentHead, c.DepartmentDeputy,
		c.ClassHead, c.ClassDeputy, c.Email, c.Phone,
		c.ScheduleRegular, c.ScheduleFriday, c.ScheduleSaturday, c.ScheduleSunday)
}
