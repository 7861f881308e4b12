package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantFull bool
		wantType QueryType
	}{
		{
			name:     "count plus student keyword",
			question: "มีนักเรียนกี่คน",
			wantFull: true,
			wantType: TypeStudent,
		},
		{
			name:     "targeted teacher lookup",
			question: "อาจารย์คนไหนเชี่ยวชาญด้าน network",
			wantFull: false,
			wantType: TypeTeacher,
		},
		{
			name:     "teacher beats schedule on priority",
			question: "อาจารย์สอนวันไหนบ้าง",
			wantFull: false,
			wantType: TypeTeacher,
		},
		{
			name:     "schedule keywords",
			question: "ตารางวันเสาร์เป็นยังไง",
			wantFull: false,
			wantType: TypeSchedule,
		},
		{
			name:     "subject listing",
			question: "รายชื่อวิชาทั้งหมด",
			wantFull: true,
			wantType: TypeSubject,
		},
		{
			name:     "room lookup",
			question: "ตึก 7 มีห้องอะไรบ้าง",
			wantFull: false,
			wantType: TypeRoom,
		},
		{
			name:     "no category",
			question: "สวัสดีครับ",
			wantFull: false,
			wantType: TypeGeneral,
		},
		{
			name:     "aggregate without category",
			question: "มีข้อมูลทั้งหมดเท่าไหร่",
			wantFull: true,
			wantType: TypeGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question)
			if got.NeedsFullDataset != tt.wantFull {
				t.Errorf("NeedsFullDataset = %v, want %v", got.NeedsFullDataset, tt.wantFull)
			}
			if got.QueryType != tt.wantType {
				t.Errorf("QueryType = %q, want %q", got.QueryType, tt.wantType)
			}
		})
	}
}

func TestClassify_StudentPriorityOverLater(t *testing.T) {
	// Mentions students, teachers, and schedule terms; student wins.
	got := Classify("นักเรียนเรียนกับอาจารย์วันไหน")
	if got.QueryType != TypeStudent {
		t.Errorf("QueryType = %q, want %q", got.QueryType, TypeStudent)
	}
}
