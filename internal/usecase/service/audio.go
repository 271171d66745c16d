package service

import (
	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"
)

const defaultSearchPerPage = 25

type Audio struct {
	audioRepo repo.Audio
}

func NewAudio(audioRepo repo.Audio) usecase.Audio {
	return &Audio{audioRepo: audioRepo}
}

func (a *Audio) AddAudio(audio *entity.WhitelistAudio) error {
	return a.audioRepo.AddAudio(audio)
}

func (a *Audio) AddAudios(audios []*entity.WhitelistAudio) error {
	return a.audioRepo.AddAudios(audios)
}

func (a *Audio) GetAudio(audioID int64) (*entity.WhitelistAudio, error) {
	return a.audioRepo.GetAudio(audioID)
}

func (a *Audio) UpdateAudio(audio *entity.WhitelistAudio) error {
	return a.audioRepo.UpdateAudio(audio)
}

func (a *Audio) UpdateAudios(audios []*entity.WhitelistAudio) error {
	return a.audioRepo.UpdateAudios(audios)
}

func (a *Audio) DeleteAudio(audioID int64) error {
	return a.audioRepo.DeleteAudio(audioID)
}

func (a *Audio) DeleteAudios(audioIDs []int64) error {
	return a.audioRepo.DeleteAudios(audioIDs)
}

func (a *Audio) SearchAudios(filter *entity.AudioSearchFilter) ([]*entity.WhitelistAudio, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = defaultSearchPerPage
	}
	if filter.FilterType != "or" {
		filter.FilterType = "and"
	}
	return a.audioRepo.SearchAudios(filter)
}
