package database

import (
	"strings"

	"face-insight-api/domain/dto"
)

// likeEscape is the LIKE escape character; '!' needs no quoting in MySQL or SQLite.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// exportColumnExpr maps each export alias to its source column.
var exportColumnExpr = map[string]string{
	"time":              "f.time",
	"branch_id":         "f.branch_id",
	"camera_id":         "f.camera_id",
	"filepath":          "f.image_path",
	"gender":            "g.type",
	"gender_confidence": "g.confidence",
	"max_age":           "a.max_age",
	"min_age":           "a.min_age",
	"age_confidence":    "a.confidence",
	"race":              "r.type",
	"race_confidence":   "r.confidence",
}

const exportFrom = `FROM FaceImage AS f
INNER JOIN Gender AS g ON g.face_image_id = f.id
INNER JOIN Age AS a ON a.face_image_id = f.id
INNER JOIN Race AS r ON r.face_image_id = f.id`

type predicate struct {
	clause string
	value  interface{}
}

// exportPredicates lists one predicate per set option, in a fixed order.
//
// The confidence options keep the column pairing of the system this API
// replaces: min_age_confidence bounds Gender, max_gender_confidence bounds
// Race, and max_age_confidence/max_race_confidence both bound Age with
// max_age_confidence using >=. Branch and camera are upper bounds rather
// than equality. These look like upstream defects and stay until the
// product owners confirm the intended columns.
func exportPredicates(f dto.ExportFilter) []predicate {
	var ps []predicate

	if f.Start != nil {
		ps = append(ps, predicate{"f.time >= ?", *f.Start})
	}
	if f.End != nil {
		ps = append(ps, predicate{"f.time <= ?", *f.End})
	}
	if f.Race != nil {
		ps = append(ps, predicate{"r.type LIKE ? ESCAPE '" + likeEscape + "'", containsPattern(*f.Race)})
	}
	if f.Gender != nil {
		ps = append(ps, predicate{"g.type LIKE ? ESCAPE '" + likeEscape + "'", containsPattern(*f.Gender)})
	}
	if f.MinAge != nil {
		ps = append(ps, predicate{"a.min_age >= ?", *f.MinAge})
	}
	if f.MaxAge != nil {
		ps = append(ps, predicate{"a.max_age <= ?", *f.MaxAge})
	}
	if f.Branch != nil {
		ps = append(ps, predicate{"f.branch_id <= ?", *f.Branch})
	}
	if f.Camera != nil {
		ps = append(ps, predicate{"f.camera_id <= ?", *f.Camera})
	}
	if f.MinGenderConfidence != nil {
		ps = append(ps, predicate{"g.confidence >= ?", *f.MinGenderConfidence})
	}
	if f.MinAgeConfidence != nil {
		ps = append(ps, predicate{"g.confidence <= ?", *f.MinAgeConfidence})
	}
	if f.MinRaceConfidence != nil {
		ps = append(ps, predicate{"r.confidence >= ?", *f.MinRaceConfidence})
	}
	if f.MaxGenderConfidence != nil {
		ps = append(ps, predicate{"r.confidence <= ?", *f.MaxGenderConfidence})
	}
	if f.MaxAgeConfidence != nil {
		ps = append(ps, predicate{"a.confidence >= ?", *f.MaxAgeConfidence})
	}
	if f.MaxRaceConfidence != nil {
		ps = append(ps, predicate{"a.confidence <= ?", *f.MaxRaceConfidence})
	}

	return ps
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// BuildExportQuery renders the export SELECT and its bound arguments.
// User input only ever reaches the args slice.
func BuildExportQuery(f dto.ExportFilter) (string, []interface{}) {
	var b strings.Builder

	b.WriteString("SELECT ")
	for i, alias := range dto.ExportColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(exportColumnExpr[alias])
		b.WriteString(" AS ")
		b.WriteString(alias)
	}
	b.WriteString("\n")
	b.WriteString(exportFrom)

	ps := exportPredicates(f)
	args := make([]interface{}, 0, len(ps))
	for i, p := range ps {
		if i == 0 {
			b.WriteString("\nWHERE ")
		} else {
			b.WriteString("\n  AND ")
		}
		b.WriteString(p.clause)
		args = append(args, p.value)
	}

	b.WriteString("\nORDER BY f.time DESC, f.id DESC")

	return b.String(), args
}
