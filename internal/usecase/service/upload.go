package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/gommon/log"
)

// DurationProber измеряет длительность аудиофайла на диске.
type DurationProber interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

// UploadConfig — ограничения на загружаемые файлы.
type UploadConfig struct {
	TempDir          string
	MaxFileSize      int64
	MaxAudioDuration time.Duration
	AllowedMimeTypes []string
}

func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		TempDir:          filepath.Join(os.TempDir(), "audio-uploads"),
		MaxFileSize:      20 * 1024 * 1024,
		MaxAudioDuration: 7 * time.Minute,
		AllowedMimeTypes: []string{"audio/mpeg", "audio/ogg", "video/ogg", "audio/wav", "audio/flac"},
	}
}

type Upload struct {
	requestRepo    repo.Request
	storage        repo.BlobStorage
	durationProber DurationProber
	cfg            UploadConfig
}

func NewUpload(requestRepo repo.Request, storage repo.BlobStorage, durationProber DurationProber, cfg UploadConfig) usecase.Upload {
	return &Upload{
		requestRepo:    requestRepo,
		storage:        storage,
		durationProber: durationProber,
		cfg:            cfg,
	}
}

// ReceiveChunk принимает фрагмент загрузки. Фрагменты складываются во временные
// файлы {uploadID}-{index}; приход фрагмента с индексом total-1 запускает сборку.
func (u *Upload) ReceiveChunk(ctx context.Context, userID string, chunk *entity.AudioChunk) (*entity.ChunkResult, error) {
	if len(chunk.Raw) == 0 || chunk.FileName == "" || chunk.UploadID == "" ||
		chunk.ChunkIndex < 0 || chunk.TotalChunks <= 0 || chunk.ChunkIndex >= chunk.TotalChunks {
		return nil, usecase.ErrInvalidUploadData
	}

	// Первый фрагмент валидируется до записи на диск: тип файла по сигнатуре
	// и имя файла по шаблону "<категория> --- <название>"
	if chunk.ChunkIndex == 0 {
		detected := mimetype.Detect(chunk.Raw)
		if detected == nil || detected.String() == "application/octet-stream" {
			return nil, usecase.ErrMimeDetectionFailed
		}
		if !slices.Contains(u.cfg.AllowedMimeTypes, detected.String()) {
			return nil, usecase.ErrUnsupportedFileType
		}
		if !entity.ValidAudioFileName(chunk.FileName) {
			return nil, usecase.ErrInvalidFileName
		}
	}

	if err := os.MkdirAll(u.cfg.TempDir, 0o755); err != nil {
		return nil, err
	}
	chunkPath := u.chunkPath(chunk.UploadID, chunk.ChunkIndex)
	if err := os.WriteFile(chunkPath, chunk.Raw, 0o644); err != nil {
		return nil, err
	}

	if chunk.ChunkIndex != chunk.TotalChunks-1 {
		return &entity.ChunkResult{AssemblyDone: false}, nil
	}

	requestID, err := u.assemble(ctx, userID, chunk)
	if err != nil {
		return nil, err
	}
	return &entity.ChunkResult{AssemblyDone: true, RequestID: requestID}, nil
}

// assemble склеивает фрагменты по порядку индексов, проверяет собранный файл
// и создаёт заявку. Временные файлы удаляются на любом исходе.
func (u *Upload) assemble(ctx context.Context, userID string, chunk *entity.AudioChunk) (string, error) {
	assembledPath := filepath.Join(u.cfg.TempDir, chunk.UploadID+"-assembled")
	defer func() {
		if err := os.Remove(assembledPath); err != nil && !os.IsNotExist(err) {
			log.Errorf("failed to remove assembled file %s: %v", assembledPath, err)
		}
	}()

	if err := u.concatChunks(assembledPath, chunk.UploadID, chunk.TotalChunks); err != nil {
		u.removeChunks(chunk.UploadID, chunk.TotalChunks)
		return "", err
	}

	info, err := os.Stat(assembledPath)
	if err != nil {
		return "", err
	}
	if u.cfg.MaxFileSize > 0 && info.Size() > u.cfg.MaxFileSize {
		return "", usecase.ErrFileTooLarge
	}

	duration, err := u.durationProber.Probe(ctx, assembledPath)
	if err != nil {
		return "", fmt.Errorf("failed to probe audio duration: %w", err)
	}
	if duration > u.cfg.MaxAudioDuration {
		return "", usecase.ErrDurationExceeded
	}

	raw, err := os.ReadFile(assembledPath)
	if err != nil {
		return "", err
	}
	detected := mimetype.Detect(raw)
	if detected == nil || detected.String() == "application/octet-stream" {
		return "", usecase.ErrMimeDetectionFailed
	}

	storagePath := fmt.Sprintf("audios/user-%s_%s", userID, chunk.FileName)
	fullPath, err := u.storage.Upload(ctx, storagePath, raw, detected.String())
	if err != nil {
		return "", fmt.Errorf("failed to upload file to storage: %w", err)
	}

	requestID, err := u.requestRepo.AddRequest(&entity.Request{
		UserID:       userID,
		FileName:     chunk.FileName,
		FilePath:     storagePath,
		FullFilePath: fullPath,
	})
	if err != nil {
		return "", err
	}
	log.Infof("assembled upload %s into request %s (%d bytes)", chunk.UploadID, requestID, len(raw))
	return requestID, nil
}

// concatChunks дописывает фрагменты 0..total-1 в файл назначения строго по
// порядку, удаляя каждый фрагмент после дозаписи. Отсутствующий фрагмент
// прерывает сборку.
func (u *Upload) concatChunks(dstPath string, uploadID string, totalChunks int) error {
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	for i := 0; i < totalChunks; i++ {
		chunkPath := u.chunkPath(uploadID, i)
		raw, err := os.ReadFile(chunkPath)
		if err != nil {
			return fmt.Errorf("%w: missing chunk %d of upload %s", usecase.ErrInvalidUploadData, i, uploadID)
		}
		if _, err := dst.Write(raw); err != nil {
			return err
		}
		if err := os.Remove(chunkPath); err != nil {
			log.Errorf("failed to remove chunk file %s: %v", chunkPath, err)
		}
	}
	return nil
}

func (u *Upload) removeChunks(uploadID string, totalChunks int) {
	for i := 0; i < totalChunks; i++ {
		if err := os.Remove(u.chunkPath(uploadID, i)); err != nil && !os.IsNotExist(err) {
			log.Errorf("failed to remove chunk file %s: %v", u.chunkPath(uploadID, i), err)
		}
	}
}

func (u *Upload) chunkPath(uploadID string, index int) string {
	return filepath.Join(u.cfg.TempDir, fmt.Sprintf("%s-%d", uploadID, index))
}
