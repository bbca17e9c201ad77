package domain

import (
	"context"
	"io"
)

// ImageUpload is the photo received from the browser, streamed from a
// temporary file on disk.
type ImageUpload struct {
	Content   io.Reader
	Size      int64
	MediaType string
	FileName  string
}

type GenerationRequest struct {
	Coordinate Coordinate
	Image      ImageUpload
}

// ProgressEvent is a single step of a running generation, reported by
// the image service while the request is queued or in flight.
type ProgressEvent struct {
	Phase         string
	Message       string
	QueuePosition int
}

// ImageGenerationJob carries everything the image service needs for one
// generation. When Progress is non-nil the implementation sends events
// to it as they arrive and closes it before returning.
type ImageGenerationJob struct {
	Prompt    string
	ImageURLs []string
	Progress  chan<- ProgressEvent
}

type ImageAsset struct {
	URL         string
	ContentType string
	Width       int
	Height      int
}

type GenerationOutput struct {
	Images      []ImageAsset
	Image       *ImageAsset
	RequestID   string
	Description string
}

// FirstImageURL returns the first usable image URL from the output,
// preferring the images list over the single image field.
func (o *GenerationOutput) FirstImageURL() string {
	for _, img := range o.Images {
		if img.URL != "" {
			return img.URL
		}
	}
	if o.Image != nil {
		return o.Image.URL
	}
	return ""
}

type GenerationResult struct {
	ImageURL  string
	RequestID string
	Message   string
}

type ImageStoreRepository interface {
	UploadImage(ctx context.Context, upload ImageUpload) (string, error)
}

type GenerateImageRepository interface {
	GenerateImage(ctx context.Context, job ImageGenerationJob) (*GenerationOutput, error)
}
