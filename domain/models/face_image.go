package models

// FaceImage is one detection event written by the ingestion pipeline.
// Time is a unix epoch in seconds and is the ordering key for "latest".
type FaceImage struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ImagePath string `gorm:"column:image_path;not null"`
	CameraID  int64  `gorm:"column:camera_id;index"`
	BranchID  int64  `gorm:"column:branch_id;index"`
	Time      int64  `gorm:"column:time;index"`

	// Bounding box in pixels of the source image
	PositionTop    int `gorm:"column:position_top"`
	PositionRight  int `gorm:"column:position_right"`
	PositionBottom int `gorm:"column:position_bottom"`
	PositionLeft   int `gorm:"column:position_left"`
}

func (FaceImage) TableName() string {
	return "FaceImage"
}

// HasBox reports whether the stored bounding box describes a non-empty rectangle.
func (f FaceImage) HasBox() bool {
	return f.PositionRight > f.PositionLeft && f.PositionBottom > f.PositionTop
}
