package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"face-insight-api/domain/dto"
)

// Query parameter names accepted by the CSV export.
const (
	ParamStart               = "start"
	ParamEnd                 = "end"
	ParamRace                = "race"
	ParamGender              = "gender"
	ParamMinAge              = "min_age"
	ParamMaxAge              = "max_age"
	ParamBranch              = "branch"
	ParamCamera              = "camera"
	ParamMinGenderConfidence = "min_gender_confidence"
	ParamMaxGenderConfidence = "max_gender_confidence"
	ParamMinAgeConfidence    = "min_age_confidence"
	ParamMaxAgeConfidence    = "max_age_confidence"
	ParamMinRaceConfidence   = "min_race_confidence"
	ParamMaxRaceConfidence   = "max_race_confidence"
)

// ParseExportFilter reads export options through lookup, which returns "" for an
// absent key. Blank values are treated as unset. Values that do not parse as
// the option's type fail with ErrValidation.
func ParseExportFilter(lookup func(key string) string) (dto.ExportFilter, error) {
	p := filterParser{lookup: lookup}
	f := dto.ExportFilter{
		Start:  p.integer64(ParamStart),
		End:    p.integer64(ParamEnd),
		Race:   p.text(ParamRace),
		Gender: p.text(ParamGender),
		MinAge: p.integer(ParamMinAge),
		MaxAge: p.integer(ParamMaxAge),
		Branch: p.integer64(ParamBranch),
		Camera: p.integer64(ParamCamera),

		MinGenderConfidence: p.number(ParamMinGenderConfidence),
		MaxGenderConfidence: p.number(ParamMaxGenderConfidence),
		MinAgeConfidence:    p.number(ParamMinAgeConfidence),
		MaxAgeConfidence:    p.number(ParamMaxAgeConfidence),
		MinRaceConfidence:   p.number(ParamMinRaceConfidence),
		MaxRaceConfidence:   p.number(ParamMaxRaceConfidence),
	}
	if p.err != nil {
		return dto.ExportFilter{}, p.err
	}
	return f, nil
}

// filterParser keeps the first parse error so every option can be read in one pass.
type filterParser struct {
	lookup func(string) string
	err    error
}

func (p *filterParser) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.lookup(key))
	return v, v != ""
}

func (p *filterParser) fail(key, value, kind string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s must be %s, got %q", ErrValidation, key, kind, value)
	}
}

func (p *filterParser) text(key string) *string {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	return &v
}

func (p *filterParser) integer64(key string) *int64 {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, "an integer")
		return nil
	}
	return &n
}

func (p *filterParser) integer(key string) *int {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, "an integer")
		return nil
	}
	return &n
}

func (p *filterParser) number(key string) *float64 {
	v, ok := p.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		p.fail(key, v, "a number")
		return nil
	}
	return &n
}
