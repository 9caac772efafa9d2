package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_manager_files_uploaded_total",
			Help: "Number of records created by the upload pipeline",
		},
		[]string{"type"},
	)

	thumbnailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_manager_thumbnail_jobs_total",
			Help: "Thumbnail jobs by outcome (completed, skipped, retried, terminated)",
		},
		[]string{"outcome"},
	)

	thumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_manager_thumbnails_total",
			Help: "Thumbnail sizes attempted by width and result",
		},
		[]string{"width", "result"},
	)
)

func RecordUpload(fileType string) {
	filesUploadedTotal.WithLabelValues(fileType).Inc()
}

func RecordThumbnailJob(outcome string) {
	thumbnailJobsTotal.WithLabelValues(outcome).Inc()
}

func RecordThumbnail(width int, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	thumbnailsTotal.WithLabelValues(strconv.Itoa(width), result).Inc()
}
