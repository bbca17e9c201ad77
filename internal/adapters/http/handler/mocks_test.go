package handler

import (
	"context"
	"io"

	"github.com/shyjal/goplaces/internal/domain"
)

type mockStore struct {
	uploadCalled bool
	receivedSize int64
	receivedMime string
	receivedBody []byte
	returnURL    string
	returnErr    error
}

func (m *mockStore) UploadImage(ctx context.Context, upload domain.ImageUpload) (string, error) {
	m.uploadCalled = true
	m.receivedSize = upload.Size
	m.receivedMime = upload.MediaType
	if upload.Content != nil {
		m.receivedBody, _ = io.ReadAll(upload.Content)
	}
	if m.returnErr != nil {
		return "", m.returnErr
	}
	return m.returnURL, nil
}

type mockGenerator struct {
	generateCalled bool
	lastJob        domain.ImageGenerationJob
	output         *domain.GenerationOutput
	returnErr      error
}

func (m *mockGenerator) GenerateImage(ctx context.Context, job domain.ImageGenerationJob) (*domain.GenerationOutput, error) {
	m.generateCalled = true
	m.lastJob = job
	if job.Progress != nil {
		close(job.Progress)
	}
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.output, nil
}

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Error(msg string, args ...any) {}
func (m *mockLogger) With(args ...any) domain.LoggingRepository {
	return m
}
