package cockroach

import (
	"database/sql"
	"errors"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Поля вайтлиста, по которым разрешена фильтрация в поиске.
var searchableAudioFields = map[string]string{
	"name":                "name",
	"category":            "category",
	"whitelister_name":    "whitelister_name",
	"whitelister_user_id": "whitelister_user_id",
}

type Audio struct {
	db *sqlx.DB
}

func NewAudio(db *sqlx.DB) repo.Audio {
	return &Audio{db: db}
}

func (a *Audio) AddAudio(audio *entity.WhitelistAudio) error {
	query := `
		INSERT INTO audio (id, name, category, whitelister_name, whitelister_user_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := a.db.Exec(query, audio.ID, audio.Name, audio.Category, audio.WhitelisterName, audio.WhitelisterUserID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repo.ErrAudioAlreadyExists
		}
		return err
	}
	return nil
}

func (a *Audio) AddAudios(audios []*entity.WhitelistAudio) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, audio := range audios {
		_, err = tx.Exec(`
			INSERT INTO audio (id, name, category, whitelister_name, whitelister_user_id)
			VALUES ($1, $2, $3, $4, $5)
		`, audio.ID, audio.Name, audio.Category, audio.WhitelisterName, audio.WhitelisterUserID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return repo.ErrAudioAlreadyExists
			}
			return err
		}
	}
	return tx.Commit()
}

func (a *Audio) GetAudio(audioID int64) (*entity.WhitelistAudio, error) {
	audio := &entity.WhitelistAudio{}
	query := `SELECT id, name, category, whitelister_name, whitelister_user_id, created_at FROM audio WHERE id = $1`
	err := a.db.Get(audio, query, audioID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrAudioNotFound
		}
		return nil, err
	}
	return audio, nil
}

func (a *Audio) UpdateAudio(audio *entity.WhitelistAudio) error {
	result, err := a.db.Exec(`
		UPDATE audio SET name = $1, category = $2 WHERE id = $3
	`, audio.Name, audio.Category, audio.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo.ErrAudioNotFound
	}
	return nil
}

func (a *Audio) UpdateAudios(audios []*entity.WhitelistAudio) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, audio := range audios {
		result, err := tx.Exec(`
			UPDATE audio SET name = $1, category = $2 WHERE id = $3
		`, audio.Name, audio.Category, audio.ID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repo.ErrAudioNotFound
		}
	}
	return tx.Commit()
}

func (a *Audio) DeleteAudio(audioID int64) error {
	result, err := a.db.Exec(`DELETE FROM audio WHERE id = $1`, audioID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo.ErrAudioNotFound
	}
	return nil
}

func (a *Audio) DeleteAudios(audioIDs []int64) error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, audioID := range audioIDs {
		if _, err = tx.Exec(`DELETE FROM audio WHERE id = $1`, audioID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (a *Audio) SearchAudios(filter *entity.AudioSearchFilter) ([]*entity.WhitelistAudio, int, error) {
	where := buildAudioSearchConditions(filter)

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := builder.
		Select("id", "name", "category", "whitelister_name", "whitelister_user_id", "created_at").
		From("audio").
		Where(where).
		OrderBy("name").
		Limit(uint64(filter.PerPage)).
		Offset(uint64((filter.Page - 1) * filter.PerPage)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var audios []*entity.WhitelistAudio
	if err := a.db.Select(&audios, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := builder.Select("COUNT(*)").From("audio").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := a.db.Get(&total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	return audios, total, nil
}

// buildAudioSearchConditions собирает WHERE для поиска: ключевое слово по имени
// плюс фильтры по отдельным полям, объединённые через AND или OR.
func buildAudioSearchConditions(filter *entity.AudioSearchFilter) sq.Sqlizer {
	conditions := sq.And{}
	if filter.Keyword != "" {
		conditions = append(conditions, sq.ILike{"name": "%" + filter.Keyword + "%"})
	}

	fieldConditions := sq.And{}
	if filter.FilterType == "or" {
		fieldConditions = nil
	}
	var orConditions sq.Or
	for _, f := range filter.Filters {
		column, ok := searchableAudioFields[f.Field]
		if !ok {
			continue
		}
		condition := sq.ILike{column: "%" + f.Value + "%"}
		if filter.FilterType == "or" {
			orConditions = append(orConditions, condition)
		} else {
			fieldConditions = append(fieldConditions, condition)
		}
	}
	if len(orConditions) > 0 {
		conditions = append(conditions, orConditions)
	} else if len(fieldConditions) > 0 {
		conditions = append(conditions, fieldConditions)
	}
	return conditions
}

type UploadedAudio struct {
	db *sqlx.DB
}

func NewUploadedAudio(db *sqlx.DB) repo.UploadedAudio {
	return &UploadedAudio{db: db}
}

func (u *UploadedAudio) AddUploadedAudio(audio *entity.UploadedAudio) error {
	query := `
		INSERT INTO uploaded_audio (id, name, category, granted_use_permissions, requester_user_id, uploader_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := u.db.Exec(query,
		audio.ID,
		audio.Name,
		audio.Category,
		audio.GrantedUsePermissions,
		audio.RequesterUserID,
		audio.UploaderUserID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repo.ErrAudioAlreadyExists
		}
		return err
	}
	return nil
}

func (u *UploadedAudio) GetModerationQueue() ([]*entity.UploadedAudio, error) {
	var audios []*entity.UploadedAudio
	query := `
		SELECT id, name, category, granted_use_permissions, in_moderation_queue, is_moderated,
		       requester_user_id, uploader_user_id, created_at, updated_at
		FROM uploaded_audio
		WHERE in_moderation_queue = true
	`
	if err := u.db.Select(&audios, query); err != nil {
		return nil, err
	}
	return audios, nil
}

func (u *UploadedAudio) SetModerationStatus(audioIDs []int64, isModerated bool) error {
	if len(audioIDs) == 0 {
		return nil
	}
	query := `
		UPDATE uploaded_audio
		SET in_moderation_queue = false, is_moderated = $1, updated_at = now()
		WHERE id = ANY($2)
	`
	_, err := u.db.Exec(query, isModerated, pq.Array(audioIDs))
	return err
}
