package dto

type GenderResult struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type RaceResult struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type AgeResult struct {
	MinAge     int     `json:"min_age"`
	MaxAge     int     `json:"max_age"`
	Confidence float64 `json:"confidence"`
}

type DemographicResult struct {
	Gender GenderResult `json:"gender"`
	Race   RaceResult   `json:"race"`
	Age    AgeResult    `json:"age"`
}

// LatestResultResponse is the body of GET /result/latest.
type LatestResultResponse struct {
	Epoch        int64               `json:"epoch"`
	ID           int64               `json:"id"`
	BranchID     int64               `json:"branch_id"`
	CameraID     int64               `json:"camera_id"`
	Results      []DemographicResult `json:"results"`
	PhotoDataURI string              `json:"photo_data_uri"`
}
