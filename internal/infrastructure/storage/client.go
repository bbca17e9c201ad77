package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shyjal/goplaces/internal/domain"
)

// FalMediaClient uploads files to fal's media storage. An upload is
// two calls: initiate returns a presigned upload URL plus the final
// file URL, then the bytes are PUT to the upload URL.
type FalMediaClient struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

func NewFalMediaClient(baseURL, apiKey string, httpClient *http.Client) *FalMediaClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &FalMediaClient{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
		APIKey:     apiKey,
	}
}

type initiateUploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type initiateUploadResponse struct {
	FileURL   string `json:"file_url"`
	UploadURL string `json:"upload_url"`
}

func (s *FalMediaClient) UploadImage(ctx context.Context, upload domain.ImageUpload) (string, error) {
	target, err := s.initiate(ctx, upload)
	if err != nil {
		return "", domain.NewDomainError(domain.ErrCodeExternal, "fal storage initiate failed", err)
	}

	if err := s.put(ctx, target.UploadURL, upload); err != nil {
		return "", domain.NewDomainError(domain.ErrCodeExternal, "fal storage upload failed", err)
	}

	return target.FileURL, nil
}

func (s *FalMediaClient) initiate(ctx context.Context, upload domain.ImageUpload) (*initiateUploadResponse, error) {
	fileName := upload.FileName
	if fileName == "" {
		fileName = "photo.jpg"
	}

	payload, err := json.Marshal(initiateUploadRequest{
		FileName:    fileName,
		ContentType: upload.MediaType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/storage/upload/initiate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Key "+s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var result initiateUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.FileURL == "" || result.UploadURL == "" {
		return nil, fmt.Errorf("storage returned no upload target")
	}

	return &result, nil
}

func (s *FalMediaClient) put(ctx context.Context, uploadURL string, upload domain.ImageUpload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, upload.Content)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = upload.Size
	req.Header.Set("Content-Type", upload.MediaType)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}
