package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shyjal/goplaces/internal/domain"
	"github.com/shyjal/goplaces/internal/observability"
)

const defaultSuccessMessage = "image generated successfully"

type GenerateImageService struct {
	Store  domain.ImageStoreRepository
	AI     domain.GenerateImageRepository
	Logger domain.LoggingRepository
}

func NewGenerateImageService(
	store domain.ImageStoreRepository,
	ai domain.GenerateImageRepository,
	logger domain.LoggingRepository,
) *GenerateImageService {
	return &GenerateImageService{Store: store, AI: ai, Logger: logger}
}

// Execute relays one photo: upload it to media storage, ask the image
// service to rebuild the scene at the requested coordinate, and return
// the URL of the generated image.
func (s *GenerateImageService) Execute(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	log := s.Logger.With(
		"service.name", "image_generator",
		"http.request.id", observability.GetRequestID(ctx),
		"geo.location", req.Coordinate.String(),
		"event.category", []string{"process"})

	if err := validateUpload(req.Image); err != nil {
		return nil, err
	}

	log.Info("image generation started", "event.type", []string{"start"})

	uploadStart := time.Now()
	photoURL, err := s.Store.UploadImage(ctx, req.Image)
	uploadDuration := time.Since(uploadStart)
	if err != nil {
		log.Error(
			"failed to upload photo to media storage",
			"event.action", "upload_photo",
			"event.type", []string{"error", "end"},
			"event.outcome", "failed",
			"error.message", err.Error(),
			"event.duration", uploadDuration.Nanoseconds())
		return nil, wrap(domain.ErrCodeExternal, "failed to upload photo", err)
	}

	events := make(chan domain.ProgressEvent, 16)
	var drained sync.WaitGroup
	drained.Add(1)
	go func() {
		defer drained.Done()
		for ev := range events {
			log.Info(
				"image generation progress",
				"event.action", "generation_progress",
				"fal.phase", ev.Phase,
				"fal.queue_position", ev.QueuePosition,
				"fal.message", ev.Message)
		}
	}()

	generationStart := time.Now()
	output, err := s.AI.GenerateImage(ctx, domain.ImageGenerationJob{
		Prompt:    domain.ScenePrompt(req.Coordinate),
		ImageURLs: []string{photoURL},
		Progress:  events,
	})
	drained.Wait()
	generationDuration := time.Since(generationStart)
	if err != nil {
		log.Error(
			"failed to generate image by ai service",
			"event.action", "generate_image",
			"event.type", []string{"error", "end"},
			"event.outcome", "failed",
			"error.message", err.Error(),
			"event.duration", generationDuration.Nanoseconds())
		return nil, wrap(domain.ErrCodeExternal, "failed to generate image", err)
	}

	imageURL := output.FirstImageURL()
	if imageURL == "" {
		log.Error(
			"ai service returned no image",
			"event.action", "generate_image",
			"event.type", []string{"error", "end"},
			"event.outcome", "failed",
			"fal.request.id", output.RequestID,
			"event.duration", generationDuration.Nanoseconds())
		return nil, domain.ErrNoImageGenerated
	}

	message := strings.TrimSpace(output.Description)
	if message == "" {
		message = defaultSuccessMessage
	}

	log.Info(
		"image generated successfully",
		"event.type", []string{"end", "creation"},
		"event.outcome", "success",
		"fal.request.id", output.RequestID,
		"event.duration", generationDuration.Nanoseconds())

	return &domain.GenerationResult{
		ImageURL:  imageURL,
		RequestID: output.RequestID,
		Message:   message,
	}, nil
}

func validateUpload(img domain.ImageUpload) error {
	if img.Content == nil || img.Size <= 0 {
		return domain.NewDomainError(domain.ErrCodeValidation, "no image file uploaded", nil)
	}
	if !strings.HasPrefix(img.MediaType, "image/") {
		return domain.NewDomainError(domain.ErrCodeValidation, fmt.Sprintf("unsupported media type %q, expected an image", img.MediaType), nil)
	}
	return nil
}

// wrap prefixes the user facing message while keeping the code of an
// underlying domain error.
func wrap(fallbackCode, msg string, err error) *domain.DomainError {
	code := fallbackCode
	var de *domain.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	return domain.NewDomainError(code, fmt.Sprintf("%s: %v", msg, err), err)
}
