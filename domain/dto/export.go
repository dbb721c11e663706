package dto

// ExportFilter holds the optional CSV export constraints. A nil field is unset.
type ExportFilter struct {
	Start  *int64
	End    *int64
	Race   *string
	Gender *string
	MinAge *int
	MaxAge *int
	Branch *int64
	Camera *int64

	MinGenderConfidence *float64
	MaxGenderConfidence *float64
	MinAgeConfidence    *float64
	MaxAgeConfidence    *float64
	MinRaceConfidence   *float64
	MaxRaceConfidence   *float64
}

// IsEmpty reports whether no option is set.
func (f ExportFilter) IsEmpty() bool {
	return f.Start == nil && f.End == nil &&
		f.Race == nil && f.Gender == nil &&
		f.MinAge == nil && f.MaxAge == nil &&
		f.Branch == nil && f.Camera == nil &&
		f.MinGenderConfidence == nil && f.MaxGenderConfidence == nil &&
		f.MinAgeConfidence == nil && f.MaxAgeConfidence == nil &&
		f.MinRaceConfidence == nil && f.MaxRaceConfidence == nil
}

// ExportColumns is the CSV header and the select-list order of the export query.
var ExportColumns = []string{
	"time",
	"branch_id",
	"camera_id",
	"filepath",
	"gender",
	"gender_confidence",
	"max_age",
	"min_age",
	"age_confidence",
	"race",
	"race_confidence",
}

// ExportRow is one joined result row. Field order matches ExportColumns.
type ExportRow struct {
	Time             int64   `gorm:"column:time"`
	BranchID         int64   `gorm:"column:branch_id"`
	CameraID         int64   `gorm:"column:camera_id"`
	FilePath         string  `gorm:"column:filepath"`
	Gender           string  `gorm:"column:gender"`
	GenderConfidence float64 `gorm:"column:gender_confidence"`
	MaxAge           int     `gorm:"column:max_age"`
	MinAge           int     `gorm:"column:min_age"`
	AgeConfidence    float64 `gorm:"column:age_confidence"`
	Race             string  `gorm:"column:race"`
	RaceConfidence   float64 `gorm:"column:race_confidence"`
}

// CSVExport is the outcome of an export. Empty covers both "no filters"
// and "no matching rows"; callers cannot tell them apart.
type CSVExport struct {
	Empty    bool
	Rows     int
	Filename string
	Content  []byte
}
