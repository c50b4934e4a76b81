package dto

// PeriodQuery binds ?year=&sem= query parameters.
type PeriodQuery struct {
	YearLevel int `form:"year" validate:"required,min=1,max=8"`
	Semester  int `form:"sem" validate:"required,min=1,max=3"`
}

// CourseGradeRequest is a single course outcome.
type CourseGradeRequest struct {
	CourseCode string  `json:"course_code" validate:"required,max=32"`
	CourseName string  `json:"course_name" validate:"omitempty,max=200"`
	Credits    float64 `json:"credits" validate:"gte=0,lte=12"`
	Grade      string  `json:"grade" validate:"required,grade"`
	YearLevel  int     `json:"year_level" validate:"required,min=1,max=8"`
	Semester   int     `json:"semester" validate:"required,min=1,max=3"`
}

// BulkGradesRequest upserts every row inside one transaction.
type BulkGradesRequest struct {
	Grades []CourseGradeRequest `json:"grades" validate:"required,min=1,max=100,dive"`
}

// ManualGPARequest is the PUT /academic/gpa payload.
type ManualGPARequest struct {
	YearLevel int     `json:"year_level" validate:"required,min=1,max=8"`
	Semester  int     `json:"semester" validate:"required,min=1,max=3"`
	GPA       float64 `json:"gpa" validate:"gte=0,lte=4"`
}

// RequirementSetRequest replaces the required courses of a major and period.
type RequirementSetRequest struct {
	Major       string   `json:"major" validate:"required,max=64"`
	YearLevel   int      `json:"year_level" validate:"required,min=1,max=8"`
	Semester    int      `json:"semester" validate:"required,min=1,max=3"`
	CourseCodes []string `json:"course_codes" validate:"max=100,dive,required,max=32"`
}
