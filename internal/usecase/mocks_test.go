package usecase

import (
	"context"
	"sync"

	"github.com/shyjal/goplaces/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	uploadCalled bool
	lastUpload   domain.ImageUpload
	returnURL    string
	returnErr    error
}

func (m *mockStore) UploadImage(ctx context.Context, upload domain.ImageUpload) (string, error) {
	m.uploadCalled = true
	m.lastUpload = upload
	if m.returnErr != nil {
		return "", m.returnErr
	}
	return m.returnURL, nil
}

type mockGenerator struct {
	generateCalled bool
	lastJob        domain.ImageGenerationJob
	events         []domain.ProgressEvent
	output         *domain.GenerationOutput
	returnErr      error
}

func (m *mockGenerator) GenerateImage(ctx context.Context, job domain.ImageGenerationJob) (*domain.GenerationOutput, error) {
	m.generateCalled = true
	m.lastJob = job
	if job.Progress != nil {
		for _, ev := range m.events {
			job.Progress <- ev
		}
		close(job.Progress)
	}
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.output, nil
}

type logEntry struct {
	level string
	msg   string
	args  []interface{}
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) record(level, msg string, args []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: level, msg: msg, args: args})
}

func (m *mockLogger) Debug(msg string, args ...interface{}) { m.record("debug", msg, args) }
func (m *mockLogger) Info(msg string, args ...interface{})  { m.record("info", msg, args) }
func (m *mockLogger) Warn(msg string, args ...interface{})  { m.record("warn", msg, args) }
func (m *mockLogger) Error(msg string, args ...interface{}) { m.record("error", msg, args) }

func (m *mockLogger) With(args ...interface{}) domain.LoggingRepository { return m }

func (m *mockLogger) countByMessage(msg string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.msg == msg {
			n++
		}
	}
	return n
}
