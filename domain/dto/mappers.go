package dto

import "face-insight-api/domain/models"

// ToLatestResultResponse builds the latest-result body from the joined rows.
func ToLatestResultResponse(face *models.FaceImage, gender *models.Gender, race *models.Race, age *models.Age, photoDataURI string) *LatestResultResponse {
	return &LatestResultResponse{
		Epoch:    face.Time,
		ID:       face.ID,
		BranchID: face.BranchID,
		CameraID: face.CameraID,
		Results: []DemographicResult{{
			Gender: GenderResult{Type: gender.Type, Confidence: gender.Confidence},
			Race:   RaceResult{Type: race.Type, Confidence: race.Confidence},
			Age:    AgeResult{MinAge: age.MinAge, MaxAge: age.MaxAge, Confidence: age.Confidence},
		}},
		PhotoDataURI: photoDataURI,
	}
}
