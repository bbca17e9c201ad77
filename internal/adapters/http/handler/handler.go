package handler

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shyjal/goplaces/internal/adapters/http/dto"
	"github.com/shyjal/goplaces/internal/adapters/http/middleware"
	"github.com/shyjal/goplaces/internal/domain"
	"github.com/shyjal/goplaces/internal/usecase"
)

// Multipart forms above this threshold spill to disk while parsing.
const maxMultipartMemory = 32 << 20

type GenerationHandler struct {
	ImageSvc      *usecase.GenerateImageService
	Logger        domain.LoggingRepository
	MapboxToken   string
	PlacesAPIKey  string
	PlacesAPIURL  string
	APIBaseURL    string
	MaxUploadSize int64
	startedAt     time.Time
}

func NewGenerationHandler(
	imgsvc *usecase.GenerateImageService,
	logger domain.LoggingRepository,
	mapboxtoken string,
	placesapikey string,
	placesapiurl string,
	apibaseurl string,
	maxuploadsize int64,
) *GenerationHandler {
	return &GenerationHandler{
		ImageSvc:      imgsvc,
		Logger:        logger,
		MapboxToken:   mapboxtoken,
		PlacesAPIKey:  placesapikey,
		PlacesAPIURL:  placesapiurl,
		APIBaseURL:    apibaseurl,
		MaxUploadSize: maxuploadsize,
		startedAt:     time.Now(),
	}
}

func (h *GenerationHandler) HomePageHandler(c *gin.Context) {
	c.String(http.StatusOK, "goplaces server is running")
}

func (h *GenerationHandler) ClientConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ClientConfigResponse{
		MapboxToken:  h.MapboxToken,
		PlacesAPIKey: h.PlacesAPIKey,
		PlacesAPIURL: h.PlacesAPIURL,
		APIBaseURL:   h.APIBaseURL,
	})
}

// GenerateImageHandler accepts a multipart form with lat, lng and an
// image file, relays it through the generation pipeline and answers
// with the URL of the generated image.
func (h *GenerationHandler) GenerateImageHandler(c *gin.Context) {
	log := h.Logger.With(
		"service.name", "http_handler",
		"http.request.id", c.GetString(middleware.RequestIDKey))

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: fmt.Sprintf("upload must not be larger than %d bytes", h.MaxUploadSize)})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid multipart form"})
		return
	}

	lat, err := strconv.ParseFloat(c.PostForm("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid latitude"})
		return
	}
	lng, err := strconv.ParseFloat(c.PostForm("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid longitude"})
		return
	}
	coordinate, err := domain.NewCoordinate(lat, lng)
	if err != nil {
		status, body := dto.MapErr(err)
		c.JSON(status, body)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no image file uploaded"})
		return
	}

	saved, err := SaveUpload(c, fileHeader)
	if err != nil {
		log.Error("failed to persist uploaded photo", "error.message", err.Error())
		status, body := dto.MapErr(err)
		c.JSON(status, body)
		return
	}
	defer func() {
		if err := saved.Discard(); err != nil {
			log.Warn("failed to remove temporary upload", "file.path", saved.Path, "error.message", err.Error())
		}
	}()

	log.Debug("uploaded photo saved",
		"file.path", saved.Path,
		"file.size", saved.Size,
		"file.mime_type", saved.MediaType)

	file, err := saved.Open()
	if err != nil {
		log.Error("failed to reopen uploaded photo", "file.path", saved.Path, "error.message", err.Error())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read the uploaded photo"})
		return
	}
	defer file.Close()

	result, err := h.ImageSvc.Execute(c.Request.Context(), domain.GenerationRequest{
		Coordinate: coordinate,
		Image: domain.ImageUpload{
			Content:   file,
			Size:      saved.Size,
			MediaType: saved.MediaType,
			FileName:  saved.Name,
		},
	})
	if err != nil {
		status, body := dto.MapErr(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateImageResponse{
		Success:   true,
		ImageURL:  result.ImageURL,
		Message:   result.Message,
		RequestID: result.RequestID,
	})
}

func (h *GenerationHandler) HealthHandler(c *gin.Context) {
	var memStat runtime.MemStats
	runtime.ReadMemStats(&memStat)

	var resp dto.HealthResponse
	resp.Status = "ok"
	resp.UptimeSeconds = time.Since(h.startedAt).Seconds()
	resp.Memory.AllocMB = memStat.Alloc / 1024 / 1024
	resp.Memory.TotalAllocMB = memStat.TotalAlloc / 1024 / 1024
	resp.Memory.SysMB = memStat.Sys / 1024 / 1024
	resp.Memory.NumGC = memStat.NumGC
	resp.Memory.NumGoroutine = runtime.NumGoroutine()

	c.JSON(http.StatusOK, resp)
}
