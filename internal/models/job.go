package models

// ThumbnailJob asks the worker to derive thumbnails for an uploaded image.
type ThumbnailJob struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
}
