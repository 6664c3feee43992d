package models

import "time"

type Clip struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ClubName        string    `json:"clubName"`
	Category        string    `json:"category"`
	DurationSeconds int       `json:"durationSeconds"`
	UploadDate      time.Time `json:"uploadDate"`
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	VideoURL        string    `json:"videoUrl"`
	StorageKey      string    `json:"storageKey,omitempty"`
	ContentType     string    `json:"contentType"`
	FileSize        int64     `json:"fileSize"`
}

func (c Clip) EntityID() string { return c.ID }

// ClipCounter is the interactive part of a clip.
type ClipCounter struct {
	ID    string `json:"id"`
	Views int64  `json:"views"`
	Likes int64  `json:"likes"`
}

// ClipStats holds aggregate counters over all clips.
type ClipStats struct {
	TotalClips int   `json:"total_clips"`
	TotalViews int64 `json:"total_views"`
	TotalLikes int64 `json:"total_likes"`
}

// ClipStatsSnapshot is the payload of the clip-stats channel.
type ClipStatsSnapshot struct {
	Stats    ClipStats     `json:"stats"`
	Counters []ClipCounter `json:"counters"`
}

type ClipPage struct {
	Clips   []Clip `json:"clips"`
	HasMore bool   `json:"has_more"`
	Total   int    `json:"total"`
}
