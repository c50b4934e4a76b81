package dto

// CohortQuery binds ?major=&year=&sem= for cohort endpoints.
type CohortQuery struct {
	Major     string `form:"major" validate:"required,max=64"`
	YearLevel int    `form:"year" validate:"required,min=1,max=8"`
	Semester  int    `form:"sem" validate:"required,min=1,max=3"`
}

// ExportQuery adds the output format to a cohort query.
type ExportQuery struct {
	CohortQuery
	Format string `form:"format"`
}
