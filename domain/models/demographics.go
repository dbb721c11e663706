package models

// Gender, Race and Age each hold one inference result per FaceImage.

type Gender struct {
	FaceImageID int64   `gorm:"column:face_image_id;primaryKey;autoIncrement:false"`
	Type        string  `gorm:"column:type"`
	Confidence  float64 `gorm:"column:confidence"`
}

func (Gender) TableName() string {
	return "Gender"
}

type Race struct {
	FaceImageID int64   `gorm:"column:face_image_id;primaryKey;autoIncrement:false"`
	Type        string  `gorm:"column:type"`
	Confidence  float64 `gorm:"column:confidence"`
}

func (Race) TableName() string {
	return "Race"
}

type Age struct {
	FaceImageID int64   `gorm:"column:face_image_id;primaryKey;autoIncrement:false"`
	MinAge      int     `gorm:"column:min_age"`
	MaxAge      int     `gorm:"column:max_age"`
	Confidence  float64 `gorm:"column:confidence"`
}

func (Age) TableName() string {
	return "Age"
}
