package service_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"testing"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/usecase"
	"audiodb-backend/internal/usecase/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequestRepo struct {
	requests []*entity.Request
}

func (f *fakeRequestRepo) AddRequest(request *entity.Request) (string, error) {
	request.ID = fmt.Sprintf("request-%d", len(f.requests)+1)
	f.requests = append(f.requests, request)
	return request.ID, nil
}

func (f *fakeRequestRepo) GetRequest(requestID string) (*entity.Request, error) {
	for _, request := range f.requests {
		if request.ID == requestID {
			return request, nil
		}
	}
	return nil, fmt.Errorf("request not found")
}

func (f *fakeRequestRepo) GetRequests() ([]*entity.Request, error) {
	return f.requests, nil
}

func (f *fakeRequestRepo) DeleteRequest(requestID string) error {
	for i, request := range f.requests {
		if request.ID == requestID {
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("request not found")
}

type fakeBlobStorage struct {
	objects map[string][]byte
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{objects: map[string][]byte{}}
}

func (f *fakeBlobStorage) Upload(_ context.Context, path string, raw []byte, _ string) (string, error) {
	f.objects[path] = raw
	return "test-bucket/" + path, nil
}

func (f *fakeBlobStorage) Download(_ context.Context, path string) ([]byte, error) {
	raw, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return raw, nil
}

func (f *fakeBlobStorage) Delete(_ context.Context, path string) error {
	delete(f.objects, path)
	return nil
}

func (f *fakeBlobStorage) PresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://storage.test/" + path, nil
}

type fakeDurationProber struct {
	duration time.Duration
	err      error
}

func (f *fakeDurationProber) Probe(_ context.Context, _ string) (time.Duration, error) {
	return f.duration, f.err
}

// wavBytes собирает валидный WAV-файл с указанной полезной нагрузкой.
func wavBytes(payload []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(payload)))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))     // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))     // mono
	_ = binary.Write(buf, binary.LittleEndian, uint32(44100)) // sample rate
	_ = binary.Write(buf, binary.LittleEndian, uint32(88200))
	_ = binary.Write(buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func newUploadService(t *testing.T, requestRepo *fakeRequestRepo, storage *fakeBlobStorage, prober *fakeDurationProber) (usecase.Upload, string) {
	t.Helper()
	cfg := service.DefaultUploadConfig()
	cfg.TempDir = t.TempDir()
	return service.NewUpload(requestRepo, storage, prober, cfg), cfg.TempDir
}

func splitChunks(raw []byte, parts int) [][]byte {
	size := (len(raw) + parts - 1) / parts
	chunks := make([][]byte, 0, parts)
	for i := 0; i < parts; i++ {
		start := i * size
		end := start + size
		if end > len(raw) {
			end = len(raw)
		}
		chunks = append(chunks, raw[start:end])
	}
	return chunks
}

func sendChunks(t *testing.T, svc usecase.Upload, uploadID string, fileName string, chunks [][]byte) (*entity.ChunkResult, error) {
	t.Helper()
	var result *entity.ChunkResult
	var err error
	for i, raw := range chunks {
		result, err = svc.ReceiveChunk(context.Background(), "user-1", &entity.AudioChunk{
			Raw:         raw,
			FileName:    fileName,
			ChunkIndex:  i,
			TotalChunks: len(chunks),
			UploadID:    uploadID,
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func TestUpload_ReceiveChunk_AssemblesFileByteIdentical(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	storage := newFakeBlobStorage()
	svc, tempDir := newUploadService(t, requestRepo, storage, &fakeDurationProber{duration: 3 * time.Minute})

	original := wavBytes(bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 256))
	chunks := splitChunks(original, 3)

	result, err := sendChunks(t, svc, "upload-1", "Music --- Cool Song.wav", chunks)
	require.NoError(t, err)
	require.True(t, result.AssemblyDone)
	assert.NotEmpty(t, result.RequestID)

	// Собранный файл в хранилище байт-в-байт совпадает с исходным
	stored, ok := storage.objects["audios/user-user-1_Music --- Cool Song.wav"]
	require.True(t, ok)
	assert.Equal(t, original, stored)

	require.Len(t, requestRepo.requests, 1)
	request := requestRepo.requests[0]
	assert.Equal(t, "user-1", request.UserID)
	assert.Equal(t, "Music --- Cool Song.wav", request.FileName)
	assert.Equal(t, "test-bucket/audios/user-user-1_Music --- Cool Song.wav", request.FullFilePath)

	// Временные файлы подчищены независимо от исхода
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ReceiveChunk_IntermediateChunkDoesNotAssemble(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	svc, _ := newUploadService(t, requestRepo, newFakeBlobStorage(), &fakeDurationProber{})

	result, err := svc.ReceiveChunk(context.Background(), "user-1", &entity.AudioChunk{
		Raw:         wavBytes([]byte{0x00}),
		FileName:    "Music --- Song.wav",
		ChunkIndex:  0,
		TotalChunks: 3,
		UploadID:    "upload-2",
	})
	require.NoError(t, err)
	assert.False(t, result.AssemblyDone)
	assert.Empty(t, requestRepo.requests)
}

func TestUpload_ReceiveChunk_ResentFinalChunkDoesNotCreateSecondRequest(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	storage := newFakeBlobStorage()
	svc, _ := newUploadService(t, requestRepo, storage, &fakeDurationProber{duration: time.Minute})

	original := wavBytes(bytes.Repeat([]byte{0xAB}, 128))
	chunks := splitChunks(original, 2)
	_, err := sendChunks(t, svc, "upload-3", "Music --- Song.wav", chunks)
	require.NoError(t, err)
	require.Len(t, requestRepo.requests, 1)

	// Повтор последнего фрагмента: исходные фрагменты уже удалены,
	// сборка обрывается и вторая заявка не создаётся
	_, err = svc.ReceiveChunk(context.Background(), "user-1", &entity.AudioChunk{
		Raw:         chunks[1],
		FileName:    "Music --- Song.wav",
		ChunkIndex:  1,
		TotalChunks: 2,
		UploadID:    "upload-3",
	})
	require.ErrorIs(t, err, usecase.ErrInvalidUploadData)
	assert.Len(t, requestRepo.requests, 1)
}

func TestUpload_ReceiveChunk_RejectsBeforeWritingToDisk(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		fileName string
		wantErr  error
	}{
		{
			name:     "invalid file name",
			raw:      wavBytes([]byte{0x00, 0x01}),
			fileName: "no-separator.wav",
			wantErr:  usecase.ErrInvalidFileName,
		},
		{
			name:     "unsupported file type",
			raw:      []byte("plain text is not audio"),
			fileName: "Music --- Song.txt",
			wantErr:  usecase.ErrUnsupportedFileType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestRepo := &fakeRequestRepo{}
			svc, tempDir := newUploadService(t, requestRepo, newFakeBlobStorage(), &fakeDurationProber{})

			_, err := svc.ReceiveChunk(context.Background(), "user-1", &entity.AudioChunk{
				Raw:         tt.raw,
				FileName:    tt.fileName,
				ChunkIndex:  0,
				TotalChunks: 2,
				UploadID:    "upload-4",
			})
			require.ErrorIs(t, err, tt.wantErr)

			// Отклонённый первый фрагмент не оставляет следов на диске
			entries, err := os.ReadDir(tempDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestUpload_ReceiveChunk_RejectsMalformedChunkMetadata(t *testing.T) {
	svc, _ := newUploadService(t, &fakeRequestRepo{}, newFakeBlobStorage(), &fakeDurationProber{})

	tests := []struct {
		name  string
		chunk *entity.AudioChunk
	}{
		{"empty payload", &entity.AudioChunk{FileName: "a --- b.wav", TotalChunks: 1, UploadID: "u"}},
		{"missing upload id", &entity.AudioChunk{Raw: []byte{1}, FileName: "a --- b.wav", TotalChunks: 1}},
		{"negative index", &entity.AudioChunk{Raw: []byte{1}, FileName: "a --- b.wav", ChunkIndex: -1, TotalChunks: 1, UploadID: "u"}},
		{"index out of range", &entity.AudioChunk{Raw: []byte{1}, FileName: "a --- b.wav", ChunkIndex: 2, TotalChunks: 2, UploadID: "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReceiveChunk(context.Background(), "user-1", tt.chunk)
			assert.ErrorIs(t, err, usecase.ErrInvalidUploadData)
		})
	}
}

func TestUpload_ReceiveChunk_EnforcesFileSizeLimit(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	cfg := service.DefaultUploadConfig()
	cfg.TempDir = t.TempDir()
	cfg.MaxFileSize = 64
	svc := service.NewUpload(requestRepo, newFakeBlobStorage(), &fakeDurationProber{}, cfg)

	original := wavBytes(bytes.Repeat([]byte{0xFF}, 256))
	_, err := sendChunks(t, svc, "upload-5", "Music --- Song.wav", splitChunks(original, 2))
	require.ErrorIs(t, err, usecase.ErrFileTooLarge)
	assert.Empty(t, requestRepo.requests)

	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_ReceiveChunk_EnforcesDurationLimit(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	svc, tempDir := newUploadService(t, requestRepo, newFakeBlobStorage(), &fakeDurationProber{duration: 8 * time.Minute})

	original := wavBytes(bytes.Repeat([]byte{0x10}, 64))
	_, err := sendChunks(t, svc, "upload-6", "Music --- Song.wav", splitChunks(original, 2))
	require.ErrorIs(t, err, usecase.ErrDurationExceeded)
	assert.Empty(t, requestRepo.requests)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
