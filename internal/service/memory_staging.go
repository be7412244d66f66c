package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"docs-admin-console/internal/model"
)

// MemoryStaging : staging в памяти процесса для локального запуска и тестов
type MemoryStaging struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStaging() *MemoryStaging {
	return &MemoryStaging{objects: make(map[string][]byte)}
}

func (m *MemoryStaging) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("[MemoryStaging] ошибка чтения файла: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemoryStaging) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("[MemoryStaging] объект %s не найден", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStaging) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStaging) PresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	return "", &model.ValidationError{Message: "Pré-visualização indisponível"}
}

func (m *MemoryStaging) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
