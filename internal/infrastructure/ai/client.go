package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shyjal/goplaces/internal/domain"
)

const (
	statusInQueue    = "IN_QUEUE"
	statusInProgress = "IN_PROGRESS"
	statusCompleted  = "COMPLETED"

	defaultPollInterval = time.Second
)

// FalClient talks to the fal.ai queue API: submit a request, poll its
// status until completion, then fetch the result. The http client
// carries no timeout so a slow generation is bounded only by ctx.
type FalClient struct {
	HTTPClient   *http.Client
	QueueURL     string
	Model        string
	APIKey       string
	PollInterval time.Duration
}

func NewFalClient(queueURL, model, apiKey string, httpClient *http.Client, pollInterval time.Duration) *FalClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &FalClient{
		HTTPClient:   httpClient,
		QueueURL:     queueURL,
		Model:        model,
		APIKey:       apiKey,
		PollInterval: pollInterval,
	}
}

type queueSubmitRequest struct {
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"image_urls"`
	NumImages int      `json:"num_images"`
}

type queueSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type queueLogEntry struct {
	Message   string `json:"message"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

type queueStatusResponse struct {
	Status        string          `json:"status"`
	QueuePosition int             `json:"queue_position"`
	Logs          []queueLogEntry `json:"logs"`
}

type queueImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type queueResultResponse struct {
	Images      []queueImage `json:"images"`
	Image       *queueImage  `json:"image"`
	Description string       `json:"description"`
}

func (f *FalClient) GenerateImage(ctx context.Context, job domain.ImageGenerationJob) (*domain.GenerationOutput, error) {
	if job.Progress != nil {
		defer close(job.Progress)
	}

	submitted, err := f.submit(ctx, job)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "fal queue submit failed", err)
	}

	if err := f.waitForCompletion(ctx, submitted, job.Progress); err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewDomainError(domain.ErrCodeInternal, "image generation interrupted", err)
		}
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "fal queue poll failed", err)
	}

	output, err := f.fetchResult(ctx, submitted)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "fal result fetch failed", err)
	}

	return output, nil
}

func (f *FalClient) submit(ctx context.Context, job domain.ImageGenerationJob) (*queueSubmitResponse, error) {
	payload, err := json.Marshal(queueSubmitRequest{
		Prompt:    job.Prompt,
		ImageURLs: job.ImageURLs,
		NumImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", f.QueueURL, f.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result queueSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.RequestID == "" {
		return nil, fmt.Errorf("queue returned no request id")
	}
	if result.StatusURL == "" {
		result.StatusURL = fmt.Sprintf("%s/%s/requests/%s/status", f.QueueURL, f.Model, result.RequestID)
	}
	if result.ResponseURL == "" {
		result.ResponseURL = fmt.Sprintf("%s/%s/requests/%s", f.QueueURL, f.Model, result.RequestID)
	}

	return &result, nil
}

func (f *FalClient) waitForCompletion(ctx context.Context, submitted *queueSubmitResponse, progress chan<- domain.ProgressEvent) error {
	seenLogs := 0
	lastPhase := ""

	for {
		status, err := f.checkStatus(ctx, submitted.StatusURL)
		if err != nil {
			return err
		}

		if status.Status != lastPhase {
			emit(progress, domain.ProgressEvent{Phase: status.Status, QueuePosition: status.QueuePosition})
			lastPhase = status.Status
		}

		// The queue reports the full log history on every poll.
		if seenLogs > len(status.Logs) {
			seenLogs = len(status.Logs)
		}
		for _, entry := range status.Logs[seenLogs:] {
			emit(progress, domain.ProgressEvent{Phase: status.Status, Message: entry.Message, QueuePosition: status.QueuePosition})
		}
		seenLogs = len(status.Logs)

		switch status.Status {
		case statusCompleted:
			return nil
		case statusInQueue, statusInProgress:
		default:
			return fmt.Errorf("unexpected generation status: %q", status.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.PollInterval):
		}
	}
}

func (f *FalClient) checkStatus(ctx context.Context, statusURL string) (*queueStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL+"?logs=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result queueStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (f *FalClient) fetchResult(ctx context.Context, submitted *queueSubmitResponse) (*domain.GenerationOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, submitted.ResponseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result queueResultResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	output := &domain.GenerationOutput{
		RequestID:   submitted.RequestID,
		Description: result.Description,
	}
	for _, img := range result.Images {
		output.Images = append(output.Images, toAsset(img))
	}
	if result.Image != nil {
		asset := toAsset(*result.Image)
		output.Image = &asset
	}

	return output, nil
}

func (f *FalClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Key "+f.APIKey)
	req.Header.Set("Accept", "application/json")
}

func toAsset(img queueImage) domain.ImageAsset {
	return domain.ImageAsset{
		URL:         img.URL,
		ContentType: img.ContentType,
		Width:       img.Width,
		Height:      img.Height,
	}
}

// emit forwards a progress event without ever blocking the poll loop.
func emit(progress chan<- domain.ProgressEvent, ev domain.ProgressEvent) {
	if progress == nil {
		return
	}
	select {
	case progress <- ev:
	default:
	}
}
