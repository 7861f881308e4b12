package domain

// Campus holds the static institutional facts prepended to every generation
// context. These change on the order of semesters, so they live in
// configuration rather than in a sheet.
type Campus struct {
	Name             string `yaml:"name"`
	ShortName        string `yaml:"short_name"`
	Director         string `yaml:"director"`
	DepartmentName   string `yaml:"department_name"`
	DepartmentHead   string `yaml:"department_head"`
	DepartmentDeputy string `yaml:"department_deputy"`
	Email            string `yaml:"email"`
	Phone            string `yaml:"phone"`
	ClassHead        string `yaml:"class_head"`
	ClassDeputy      string `yaml:"class_deputy"`
	ScheduleRegular  string `yaml:"schedule_regular"`
	ScheduleFriday   string `yaml:"schedule_friday"`
	ScheduleSaturday string `yaml:"schedule_saturday"`
	ScheduleSunday   string `yaml:"schedule_sunday"`
}
