package usecase

import (
	"context"

	"audiodb-backend/internal/entity"
)

type Upload interface {
	// ReceiveChunk принимает очередной фрагмент загрузки. На последнем фрагменте
	// собирает файл целиком, валидирует его, отправляет в хранилище и создаёт заявку.
	ReceiveChunk(ctx context.Context, userID string, chunk *entity.AudioChunk) (*entity.ChunkResult, error)
}
