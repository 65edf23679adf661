package models

// Media defines the structure for uploaded video and image records.
type Media struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Kind          string  `json:"kind" gorm:"index"` // video or image
	OriginalPath  string  `json:"original_path"`
	PlaybackPath  string  `json:"playback_path"`  // MP4 conversion for videos, same as original for images
	ThumbnailPath *string `json:"thumbnail_path"` // Videos only
	FrameDir      *string `json:"frame_dir"`      // Directory of extracted frames, videos only
	Notes         *string `json:"notes"`
	CreateTime    string  `json:"create_time"`
	UpdateTime    string  `json:"update_time"`
	IsDeleted     bool    `json:"is_deleted,omitempty" gorm:"default:false;index"`
}
