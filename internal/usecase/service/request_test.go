package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"audiodb-backend/internal/entity"
	"audiodb-backend/internal/repo"
	"audiodb-backend/internal/usecase"
	"audiodb-backend/internal/usecase/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Фейки конвейера принятия пишут вызовы в общий журнал,
// чтобы проверять порядок шагов.

type recordingRequestRepo struct {
	ops      *[]string
	requests map[string]*entity.Request
}

func (f *recordingRequestRepo) AddRequest(request *entity.Request) (string, error) {
	request.ID = fmt.Sprintf("request-%d", len(f.requests)+1)
	f.requests[request.ID] = request
	return request.ID, nil
}

func (f *recordingRequestRepo) GetRequest(requestID string) (*entity.Request, error) {
	request, ok := f.requests[requestID]
	if !ok {
		return nil, repo.ErrRequestNotFound
	}
	return request, nil
}

func (f *recordingRequestRepo) GetRequests() ([]*entity.Request, error) {
	requests := make([]*entity.Request, 0, len(f.requests))
	for _, request := range f.requests {
		requests = append(requests, request)
	}
	return requests, nil
}

func (f *recordingRequestRepo) DeleteRequest(requestID string) error {
	*f.ops = append(*f.ops, "delete request")
	delete(f.requests, requestID)
	return nil
}

type recordingBlobStorage struct {
	ops     *[]string
	objects map[string][]byte
}

func (f *recordingBlobStorage) Upload(_ context.Context, path string, raw []byte, _ string) (string, error) {
	f.objects[path] = raw
	return "test-bucket/" + path, nil
}

func (f *recordingBlobStorage) Download(_ context.Context, path string) ([]byte, error) {
	raw, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return raw, nil
}

func (f *recordingBlobStorage) Delete(_ context.Context, path string) error {
	*f.ops = append(*f.ops, "delete blob")
	delete(f.objects, path)
	return nil
}

func (f *recordingBlobStorage) PresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://storage.test/" + path, nil
}

type recordingUploadedAudioRepo struct {
	ops    *[]string
	audios []*entity.UploadedAudio
	err    error
}

func (f *recordingUploadedAudioRepo) AddUploadedAudio(audio *entity.UploadedAudio) error {
	*f.ops = append(*f.ops, "persist uploaded audio")
	if f.err != nil {
		return f.err
	}
	f.audios = append(f.audios, audio)
	return nil
}

func (f *recordingUploadedAudioRepo) GetModerationQueue() ([]*entity.UploadedAudio, error) {
	return f.audios, nil
}

func (f *recordingUploadedAudioRepo) SetModerationStatus(_ []int64, _ bool) error {
	return nil
}

type recordingEventRepo struct {
	ops    *[]string
	events []*entity.NotificationEvent
	err    error
}

func (f *recordingEventRepo) PublishNotificationEvent(_ context.Context, event *entity.NotificationEvent) error {
	*f.ops = append(*f.ops, "publish event")
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *recordingEventRepo) SubscribeNotificationEvents(_ context.Context) (<-chan *entity.NotificationEvent, error) {
	return nil, errors.New("not implemented")
}

type fakePool struct {
	credential *entity.Credential
	err        error
}

func (f *fakePool) AcquireUsableCredential(_ context.Context) (*entity.Credential, error) {
	return f.credential, f.err
}

type fakeRobloxClient struct {
	ops        *[]string
	assetID    int64
	createErr  error
	grantErr   error
	stagedSeen []byte
}

func (f *fakeRobloxClient) ProbeQuota(_ context.Context, _ *entity.Credential) (*entity.QuotaProbe, error) {
	return &entity.QuotaProbe{Outcome: entity.ProbeUsable}, nil
}

func (f *fakeRobloxClient) CreateAudioAsset(_ context.Context, _ *entity.Credential, asset *entity.AssetUpload) (int64, error) {
	*f.ops = append(*f.ops, "create asset")
	if f.createErr != nil {
		return 0, f.createErr
	}
	// Файл обязан лежать на диске в момент вызова платформы
	raw, err := os.ReadFile(asset.FilePath)
	if err != nil {
		return 0, fmt.Errorf("staged file unreadable: %w", err)
	}
	f.stagedSeen = raw
	return f.assetID, nil
}

func (f *fakeRobloxClient) GrantUsePermission(_ context.Context, _ *entity.Credential, _ int64) error {
	*f.ops = append(*f.ops, "grant permission")
	return f.grantErr
}

func (f *fakeRobloxClient) GetAudioStatuses(_ context.Context, _ *entity.Credential, _ []int64) ([]*entity.AudioStatus, error) {
	return nil, errors.New("not implemented")
}

type requestFixture struct {
	ops         []string
	requestRepo *recordingRequestRepo
	storage     *recordingBlobStorage
	uploaded    *recordingUploadedAudioRepo
	events      *recordingEventRepo
	roblox      *fakeRobloxClient
	svc         usecase.Request
	tempDir     string
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	f := &requestFixture{}
	f.requestRepo = &recordingRequestRepo{ops: &f.ops, requests: map[string]*entity.Request{}}
	f.storage = &recordingBlobStorage{ops: &f.ops, objects: map[string][]byte{}}
	f.uploaded = &recordingUploadedAudioRepo{ops: &f.ops}
	f.events = &recordingEventRepo{ops: &f.ops}
	f.roblox = &fakeRobloxClient{ops: &f.ops, assetID: 123456789}
	f.tempDir = t.TempDir()
	f.svc = service.NewRequest(
		f.requestRepo,
		f.uploaded,
		f.storage,
		&fakePool{credential: testCredential("42")},
		f.roblox,
		f.events,
		f.tempDir,
	)
	return f
}

func (f *requestFixture) addPendingRequest(t *testing.T, fileName string) string {
	t.Helper()
	raw := wavBytes([]byte{0x01, 0x02, 0x03, 0x04})
	path := "audios/user-user-1_" + fileName
	f.storage.objects[path] = raw
	requestID, err := f.requestRepo.AddRequest(&entity.Request{
		UserID:       "user-1",
		FileName:     fileName,
		FilePath:     path,
		FullFilePath: "test-bucket/" + path,
	})
	require.NoError(t, err)
	return requestID
}

func TestRequest_Accept_RunsPipelineInOrder(t *testing.T) {
	f := newRequestFixture(t)
	requestID := f.addPendingRequest(t, "Music --- Cool Song.wav")

	assetID, err := f.svc.Accept(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), assetID)

	// Заявка удаляется строго после записи uploaded_audio и публикации события
	assert.Equal(t, []string{
		"create asset",
		"grant permission",
		"persist uploaded audio",
		"publish event",
		"delete request",
		"delete blob",
	}, f.ops)

	require.Len(t, f.uploaded.audios, 1)
	audio := f.uploaded.audios[0]
	assert.Equal(t, int64(123456789), audio.ID)
	assert.Equal(t, "Cool Song", audio.Name)
	assert.Equal(t, "Music", audio.Category)
	assert.True(t, audio.GrantedUsePermissions)
	assert.Equal(t, "user-1", audio.RequesterUserID)
	assert.Equal(t, "42", audio.UploaderUserID)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, entity.AudioRequestAccepted, f.events.events[0].Type)
	assert.Equal(t, "user-1", f.events.events[0].UserID)

	assert.Empty(t, f.requestRepo.requests)
	assert.Empty(t, f.storage.objects)
}

func TestRequest_Accept_RemovesStagedFile(t *testing.T) {
	f := newRequestFixture(t)
	requestID := f.addPendingRequest(t, "Music --- Song.wav")

	_, err := f.svc.Accept(context.Background(), requestID)
	require.NoError(t, err)

	// Платформа видела файл целиком, после принятия каталог пуст
	assert.Equal(t, wavBytes([]byte{0x01, 0x02, 0x03, 0x04}), f.roblox.stagedSeen)
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRequest_Accept_StagedFileRemovedOnCreateFailure(t *testing.T) {
	f := newRequestFixture(t)
	f.roblox.createErr = usecase.ErrAudioMetadataModerated
	requestID := f.addPendingRequest(t, "Music --- Song.wav")

	_, err := f.svc.Accept(context.Background(), requestID)
	require.ErrorIs(t, err, usecase.ErrAudioMetadataModerated)

	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Заявка не тронута, повторное принятие возможно
	assert.Len(t, f.requestRepo.requests, 1)
	assert.Empty(t, f.uploaded.audios)
	assert.Empty(t, f.events.events)
}

func TestRequest_Accept_GrantFailureDoesNotAbortPipeline(t *testing.T) {
	f := newRequestFixture(t)
	f.roblox.grantErr = errors.New("friendship rejected")
	requestID := f.addPendingRequest(t, "Music --- Song.wav")

	assetID, err := f.svc.Accept(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), assetID)

	require.Len(t, f.uploaded.audios, 1)
	assert.False(t, f.uploaded.audios[0].GrantedUsePermissions)
	assert.Empty(t, f.requestRepo.requests)
}

func TestRequest_Accept_NoBotsAvailable(t *testing.T) {
	f := newRequestFixture(t)
	requestID := f.addPendingRequest(t, "Music --- Song.wav")
	f.svc = service.NewRequest(
		f.requestRepo, f.uploaded, f.storage,
		&fakePool{err: usecase.ErrNoBotsAvailable},
		f.roblox, f.events, f.tempDir,
	)

	_, err := f.svc.Accept(context.Background(), requestID)
	require.ErrorIs(t, err, usecase.ErrNoBotsAvailable)
	assert.Len(t, f.requestRepo.requests, 1)
	assert.Empty(t, f.ops)
}

func TestRequest_Accept_UnparseableFileName(t *testing.T) {
	f := newRequestFixture(t)
	requestID := f.addPendingRequest(t, "legacy-upload.wav")

	_, err := f.svc.Accept(context.Background(), requestID)
	require.ErrorIs(t, err, usecase.ErrInvalidFileName)
	assert.Len(t, f.requestRepo.requests, 1)
}

func TestRequest_Accept_UnknownRequest(t *testing.T) {
	f := newRequestFixture(t)

	_, err := f.svc.Accept(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrRequestNotFound)
}

func TestRequest_Accept_PublishFailureDoesNotFailAccept(t *testing.T) {
	f := newRequestFixture(t)
	f.events.err = errors.New("broker unavailable")
	requestID := f.addPendingRequest(t, "Music --- Song.wav")

	// Доставка уведомлений без гарантии: отказ шины не откатывает принятие
	assetID, err := f.svc.Accept(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), assetID)
	assert.Empty(t, f.requestRepo.requests)
}

func TestRequest_Reject_DeletesRequestAndNotifies(t *testing.T) {
	f := newRequestFixture(t)
	requestID := f.addPendingRequest(t, "Music --- Cool Song.wav")

	err := f.svc.Reject(context.Background(), requestID, "duplicate upload")
	require.NoError(t, err)

	assert.Empty(t, f.requestRepo.requests)
	assert.Empty(t, f.storage.objects)
	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, entity.AudioRequestRejected, event.Type)
	assert.Equal(t, "user-1", event.UserID)
}

func TestRequest_Reject_UnknownRequest(t *testing.T) {
	f := newRequestFixture(t)

	err := f.svc.Reject(context.Background(), "missing", "")
	assert.ErrorIs(t, err, repo.ErrRequestNotFound)
}

func TestRequest_GetRequests_AttachesPresignedURLs(t *testing.T) {
	f := newRequestFixture(t)
	f.addPendingRequest(t, "Music --- Song.wav")

	requests, err := f.svc.GetRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://storage.test/audios/user-user-1_Music --- Song.wav", requests[0].FileURL)
}
