package service

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/config"
	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/lock"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

// uploadEnv wires an UploadService against mock repositories and a real
// in-memory gateway whose presigned URLs resolve to a local test server, so
// byte transfers run the same code path as production.
type uploadEnv struct {
	svc        *UploadService
	drafts     *mockDraftRepository
	posts      *mockPostRepository
	writePosts *mockWritePostRepository
	zeals      *mockZealPostRepository
	gateway    *blobstore.MemoryGateway
	locker     *lock.MemoryLocker
	baseURL    string
}

func newUploadEnv(t *testing.T) *uploadEnv {
	return newUploadEnvWithPool(t, nil)
}

func newUploadEnvWithPool(t *testing.T, pool *worker.Pool) *uploadEnv {
	t.Helper()

	gw := blobstore.NewMemoryGateway("")
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)
	gw.SetBaseURL(srv.URL)

	env := &uploadEnv{
		drafts:     new(mockDraftRepository),
		posts:      new(mockPostRepository),
		writePosts: new(mockWritePostRepository),
		zeals:      new(mockZealPostRepository),
		gateway:    gw,
		locker:     lock.NewMemoryLocker(),
		baseURL:    srv.URL,
	}
	env.svc = NewUploadService(
		env.drafts, env.posts, env.writePosts, env.zeals,
		gw, env.locker, pool, nil, nil, zerolog.Nop(),
		config.UploadConfig{
			PartTimeout:       5 * time.Second,
			PartConcurrency:   2,
			MaxAttempts:       2,
			RetryInitialDelay: 10 * time.Millisecond,
		},
	)
	return env
}

// spoolFile writes size bytes of a deterministic pattern to a temp file.
func spoolFile(t *testing.T, size int64) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

// uploadedDraft returns a byte-complete simple draft whose object is present
// in the gateway.
func uploadedDraft(gw *blobstore.MemoryGateway, ownerID uuid.UUID) *domain.UploadDraft {
	key := gw.GenerateKey(ownerID, domain.MediaKindImage, "image/png")
	draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", key)
	now := time.Now().UTC()
	draft.UploadedAt = &now
	draft.MediaURL = gw.PublicURL(key)
	gw.Put(key, []byte("png-bytes"))
	return draft
}

func TestUploadService_StartUpload(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name    string
		input   StartUploadInput
		setup   func(env *uploadEnv)
		wantErr error
		check   func(t *testing.T, env *uploadEnv, out *StartUploadOutput)
	}{
		{
			name: "image gets a single presigned put",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "photo.jpg", FileSize: 2 << 20, MIMEType: "image/jpeg",
			},
			setup: func(env *uploadEnv) {
				env.drafts.On("CountPending", mock.Anything, ownerID, mock.Anything).Return(int64(0), nil)
				env.drafts.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, env *uploadEnv, out *StartUploadOutput) {
				assert.False(t, out.Draft.IsMultipart)
				require.NotNil(t, out.Upload)
				assert.Contains(t, out.Upload.URL, out.Draft.StorageKey)
				assert.Equal(t, 0, env.gateway.SessionCount())
			},
		},
		{
			name: "video below the threshold stays single part",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindVideo,
				FileName: "clip.mp4", FileSize: domain.MultipartThreshold - 1, MIMEType: "video/mp4",
			},
			setup: func(env *uploadEnv) {
				env.drafts.On("CountPending", mock.Anything, ownerID, mock.Anything).Return(int64(0), nil)
				env.drafts.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, env *uploadEnv, out *StartUploadOutput) {
				assert.False(t, out.Draft.IsMultipart)
				assert.NotNil(t, out.Upload)
			},
		},
		{
			name: "video at the threshold gets a chunked session",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindVideo,
				FileName: "clip.mp4", FileSize: 12 << 20, MIMEType: "video/mp4",
			},
			setup: func(env *uploadEnv) {
				env.drafts.On("CountPending", mock.Anything, ownerID, mock.Anything).Return(int64(0), nil)
				env.drafts.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, env *uploadEnv, out *StartUploadOutput) {
				assert.True(t, out.Draft.IsMultipart)
				assert.Nil(t, out.Upload)
				assert.NotEmpty(t, out.Draft.SessionID)
				assert.Equal(t, 3, out.Draft.TotalChunks)
				assert.Equal(t, 1, env.gateway.SessionCount())
			},
		},
		{
			name: "rejects empty file name",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileSize: 1024, MIMEType: "image/png",
			},
			wantErr: ErrInvalidFileName,
		},
		{
			name: "rejects non positive size",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "photo.png", FileSize: 0, MIMEType: "image/png",
			},
			wantErr: ErrInvalidFileSize,
		},
		{
			name: "rejects mime outside the allow list",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "doc.pdf", FileSize: 1024, MIMEType: "application/pdf",
			},
			wantErr: domain.ErrInvalidMediaType,
		},
		{
			name: "rejects video mime declared as image",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "clip.mp4", FileSize: 1024, MIMEType: "video/mp4",
			},
			wantErr: domain.ErrInvalidMediaType,
		},
		{
			name: "rejects image over the size ceiling",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "huge.png", FileSize: domain.MaxImageSize + 1, MIMEType: "image/png",
			},
			wantErr: domain.ErrFileTooLarge,
		},
		{
			name: "rejects when the pending cap is reached",
			input: StartUploadInput{
				OwnerID: ownerID, Kind: domain.MediaKindImage,
				FileName: "photo.png", FileSize: 1024, MIMEType: "image/png",
			},
			setup: func(env *uploadEnv) {
				env.drafts.On("CountPending", mock.Anything, ownerID, mock.Anything).
					Return(int64(domain.MaxPendingDrafts), nil)
			},
			wantErr: domain.ErrTooManyPendingUploads,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newUploadEnv(t)
			if tt.setup != nil {
				tt.setup(env)
			}

			out, err := env.svc.StartUpload(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, out)
			} else {
				require.NoError(t, err)
				require.NotNil(t, out)
				assert.Equal(t, domain.DraftStatusDraft, out.Draft.Status)
				tt.check(t, env, out)
			}

			env.drafts.AssertExpectations(t)
		})
	}
}

func TestUploadService_StartUpload_AbortsSessionWhenCreateFails(t *testing.T) {
	env := newUploadEnv(t)
	ownerID := uuid.New()

	env.drafts.On("CountPending", mock.Anything, ownerID, mock.Anything).Return(int64(0), nil)
	env.drafts.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := env.svc.StartUpload(context.Background(), StartUploadInput{
		OwnerID: ownerID, Kind: domain.MediaKindVideo,
		FileName: "clip.mp4", FileSize: 50 << 20, MIMEType: "video/mp4",
	})

	require.ErrorIs(t, err, ErrInternalError)
	assert.Equal(t, 0, env.gateway.SessionCount(), "orphaned session should be aborted")
}

func TestUploadService_UploadFile_Simple(t *testing.T) {
	env := newUploadEnv(t)
	ownerID := uuid.New()
	path, data := spoolFile(t, 1<<20)

	key := env.gateway.GenerateKey(ownerID, domain.MediaKindImage, "image/png")
	draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", int64(len(data)), "image/png", key)

	env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
	env.drafts.On("MarkUploaded", mock.Anything, draft.ID, mock.Anything, env.baseURL+"/"+key, mock.Anything).Return(nil)

	out, err := env.svc.UploadFile(context.Background(), UploadFileInput{
		DraftID: draft.ID, OwnerID: ownerID, FilePath: path,
	})

	require.NoError(t, err)
	assert.Equal(t, env.baseURL+"/"+key, out.MediaURL)
	assert.NotNil(t, out.Draft.UploadedAt)

	stored, ok := env.gateway.Object(key)
	require.True(t, ok)
	assert.Equal(t, data, stored)

	env.drafts.AssertExpectations(t)
}

func TestUploadService_UploadFile_Chunked(t *testing.T) {
	env := newUploadEnv(t)
	ownerID := uuid.New()
	path, data := spoolFile(t, 12<<20)

	key := env.gateway.GenerateKey(ownerID, domain.MediaKindVideo, "video/mp4")
	sessionID, err := env.gateway.InitiateMultipart(context.Background(), key, "video/mp4")
	require.NoError(t, err)

	draft := domain.NewMultipartDraft(ownerID, domain.MediaKindVideo, "clip.mp4", int64(len(data)), "video/mp4", key, sessionID)
	require.Equal(t, 3, draft.TotalChunks)

	env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
	env.drafts.On("MarkUploaded", mock.Anything, draft.ID, mock.Anything, env.baseURL+"/"+key, mock.Anything).Return(nil)

	out, err := env.svc.UploadFile(context.Background(), UploadFileInput{
		DraftID: draft.ID, OwnerID: ownerID, FilePath: path,
	})

	require.NoError(t, err)
	require.Len(t, out.Draft.Parts, 3)
	for i, part := range out.Draft.Parts {
		assert.Equal(t, i+1, part.PartNumber)
		assert.NotEmpty(t, part.ETag)
	}

	stored, ok := env.gateway.Object(key)
	require.True(t, ok)
	assert.Equal(t, data, stored, "assembled object should match the source file")
	assert.Equal(t, 0, env.gateway.SessionCount(), "session should be closed by completion")

	env.drafts.AssertExpectations(t)
}

func TestUploadService_UploadFile_ChunkedDetachesToPool(t *testing.T) {
	pool := worker.NewPool(worker.Options{Workers: 1, QueueSize: 4, DrainTimeout: 10 * time.Second}, zerolog.Nop())
	env := newUploadEnvWithPool(t, pool)
	ownerID := uuid.New()
	path, data := spoolFile(t, 12<<20)

	key := env.gateway.GenerateKey(ownerID, domain.MediaKindVideo, "video/mp4")
	sessionID, err := env.gateway.InitiateMultipart(context.Background(), key, "video/mp4")
	require.NoError(t, err)

	draft := domain.NewMultipartDraft(ownerID, domain.MediaKindVideo, "clip.mp4", int64(len(data)), "video/mp4", key, sessionID)

	env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
	env.drafts.On("MarkUploaded", mock.Anything, draft.ID, mock.Anything, env.baseURL+"/"+key, mock.Anything).Return(nil)

	out, err := env.svc.UploadFile(context.Background(), UploadFileInput{
		DraftID: draft.ID, OwnerID: ownerID, FilePath: path, RemoveFile: true,
	})

	require.NoError(t, err)
	assert.Empty(t, out.MediaURL, "caller should get the draft back before the transfer finishes")
	assert.Nil(t, out.Draft.UploadedAt)

	// Stop drains the queue, so the transfer has finished once it returns.
	pool.Stop()

	require.NotNil(t, draft.UploadedAt)
	stored, ok := env.gateway.Object(key)
	require.True(t, ok)
	assert.Equal(t, data, stored, "assembled object should match the source file")
	assert.Equal(t, 0, env.gateway.SessionCount())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "spool file should be removed by the task")

	env.drafts.AssertExpectations(t)
}

func TestUploadService_UploadFile_RetryOfFinishedTransfer(t *testing.T) {
	env := newUploadEnv(t)
	ownerID := uuid.New()
	draft := uploadedDraft(env.gateway, ownerID)

	env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)

	out, err := env.svc.UploadFile(context.Background(), UploadFileInput{
		DraftID: draft.ID, OwnerID: ownerID, FilePath: "/nonexistent",
	})

	require.NoError(t, err)
	assert.Equal(t, draft.MediaURL, out.MediaURL)
	env.drafts.AssertNotCalled(t, "MarkUploaded", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_UploadFile_Validation(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name    string
		prepare func(t *testing.T, env *uploadEnv) UploadFileInput
		wantErr error
	}{
		{
			name: "foreign draft reads as missing",
			prepare: func(t *testing.T, env *uploadEnv) UploadFileInput {
				draft := domain.NewSimpleDraft(uuid.New(), domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
				env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
				return UploadFileInput{DraftID: draft.ID, OwnerID: ownerID, FilePath: "/nonexistent"}
			},
			wantErr: domain.ErrDraftNotFoundOrConsumed,
		},
		{
			name: "consumed draft is gone",
			prepare: func(t *testing.T, env *uploadEnv) UploadFileInput {
				draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
				draft.Status = domain.DraftStatusUploaded
				env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
				return UploadFileInput{DraftID: draft.ID, OwnerID: ownerID, FilePath: "/nonexistent"}
			},
			wantErr: domain.ErrDraftNotFoundOrConsumed,
		},
		{
			name: "expired draft is rejected",
			prepare: func(t *testing.T, env *uploadEnv) UploadFileInput {
				draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
				draft.ExpiresAt = time.Now().UTC().Add(-time.Minute)
				env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
				return UploadFileInput{DraftID: draft.ID, OwnerID: ownerID, FilePath: "/nonexistent"}
			},
			wantErr: domain.ErrDraftExpired,
		},
		{
			name: "spooled size must match the declared size",
			prepare: func(t *testing.T, env *uploadEnv) UploadFileInput {
				path, _ := spoolFile(t, 512)
				draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
				env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
				return UploadFileInput{DraftID: draft.ID, OwnerID: ownerID, FilePath: path}
			},
			wantErr: ErrDeclaredSizeMismatch,
		},
		{
			name: "concurrent transfer holds the draft lock",
			prepare: func(t *testing.T, env *uploadEnv) UploadFileInput {
				path, _ := spoolFile(t, 1024)
				draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
				env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)

				acquired, err := env.locker.Acquire(context.Background(), lock.Keys.UploadDraft(draft.ID), time.Minute)
				require.NoError(t, err)
				require.True(t, acquired)
				return UploadFileInput{DraftID: draft.ID, OwnerID: ownerID, FilePath: path}
			},
			wantErr: ErrUploadInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newUploadEnv(t)
			input := tt.prepare(t, env)

			_, err := env.svc.UploadFile(context.Background(), input)

			require.ErrorIs(t, err, tt.wantErr)
			env.drafts.AssertExpectations(t)
		})
	}
}

func TestUploadService_CreateContent(t *testing.T) {
	ownerID := uuid.New()

	t.Run("consumes the draft before creating the entity", func(t *testing.T) {
		env := newUploadEnv(t)
		draft := uploadedDraft(env.gateway, ownerID)

		var consumed bool
		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
		env.drafts.On("Consume", mock.Anything, draft.ID, ownerID).
			Run(func(mock.Arguments) { consumed = true }).Return(nil)
		env.posts.On("Create", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				assert.True(t, consumed, "entity must be created only after the draft is consumed")
			}).Return(nil)

		out, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID,
			Type: domain.ContentTypePost, Caption: "sunset",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ContentTypePost, out.Summary.Type)
		assert.Equal(t, ownerID, out.Summary.AuthorID)
		assert.Equal(t, domain.ContentStatusProcessing, out.Summary.Status)
		assert.Equal(t, draft.MediaURL, out.Summary.MediaURL)

		mock.AssertExpectationsForObjects(t, env.drafts, env.posts)
	})

	t.Run("creates a write post with title and body", func(t *testing.T) {
		env := newUploadEnv(t)
		draft := uploadedDraft(env.gateway, ownerID)

		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
		env.drafts.On("Consume", mock.Anything, draft.ID, ownerID).Return(nil)
		env.writePosts.On("Create", mock.Anything, mock.MatchedBy(func(wp *domain.WritePost) bool {
			return wp.Title == "On chunked uploads" && wp.CoverImageURL == draft.MediaURL
		})).Return(nil)

		out, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID,
			Type: domain.ContentTypeWritePost, Title: "On chunked uploads", Body: "body",
		})

		require.NoError(t, err)
		assert.Equal(t, "On chunked uploads", out.Summary.Title)
		env.writePosts.AssertExpectations(t)
	})

	t.Run("rejects polls", func(t *testing.T) {
		env := newUploadEnv(t)

		_, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: uuid.New(), OwnerID: ownerID, Type: domain.ContentTypePoll,
		})

		require.ErrorIs(t, err, ErrNotMediaBacked)
		env.drafts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown content types", func(t *testing.T) {
		env := newUploadEnv(t)

		_, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: uuid.New(), OwnerID: ownerID, Type: domain.ContentType("story"),
		})

		require.ErrorIs(t, err, domain.ErrUnknownContentType)
	})

	t.Run("rejects chunked drafts whose transfer never finished", func(t *testing.T) {
		env := newUploadEnv(t)
		draft := domain.NewMultipartDraft(ownerID, domain.MediaKindVideo, "clip.mp4", 12<<20, "video/mp4", "videos/x/y.mp4", "sess-1")
		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)

		_, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID, Type: domain.ContentTypePost,
		})

		require.ErrorIs(t, err, domain.ErrUploadIncomplete)
	})

	t.Run("promotes a simple draft the client put to storage directly", func(t *testing.T) {
		env := newUploadEnv(t)
		key := env.gateway.GenerateKey(ownerID, domain.MediaKindImage, "image/png")
		draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", key)
		env.gateway.Put(key, []byte("png-bytes"))

		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
		env.drafts.On("Consume", mock.Anything, draft.ID, ownerID).Return(nil)
		env.posts.On("Create", mock.Anything, mock.Anything).Return(nil)

		out, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID, Type: domain.ContentTypePost, Caption: "sunset",
		})

		require.NoError(t, err)
		assert.Equal(t, env.gateway.PublicURL(key), out.Summary.MediaURL)
		mock.AssertExpectationsForObjects(t, env.drafts, env.posts)
	})

	t.Run("fails the draft when the object is missing from storage", func(t *testing.T) {
		env := newUploadEnv(t)
		draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")
		now := time.Now().UTC()
		draft.UploadedAt = &now
		draft.MediaURL = env.gateway.PublicURL(draft.StorageKey)
		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
		env.drafts.On("MarkFailed", mock.Anything, draft.ID, domain.ErrFileNotFoundInStorage.Error()).Return(nil)

		_, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID, Type: domain.ContentTypePost,
		})

		require.ErrorIs(t, err, domain.ErrFileNotFoundInStorage)
		env.drafts.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
		env.drafts.AssertExpectations(t)
	})

	t.Run("loser of a duplicate request sees the draft as gone", func(t *testing.T) {
		env := newUploadEnv(t)
		draft := uploadedDraft(env.gateway, ownerID)

		env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)
		env.drafts.On("Consume", mock.Anything, draft.ID, ownerID).Return(repository.ErrNotFound)

		_, err := env.svc.CreateContent(context.Background(), CreateContentInput{
			DraftID: draft.ID, OwnerID: ownerID, Type: domain.ContentTypePost,
		})

		require.ErrorIs(t, err, domain.ErrDraftNotFoundOrConsumed)
		env.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUploadService_GetDraft(t *testing.T) {
	env := newUploadEnv(t)
	ownerID := uuid.New()
	draft := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/y.png")

	env.drafts.On("GetByID", mock.Anything, draft.ID).Return(draft, nil)

	out, err := env.svc.GetDraft(context.Background(), GetDraftInput{DraftID: draft.ID, OwnerID: ownerID})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, out.Draft.ID)

	_, err = env.svc.GetDraft(context.Background(), GetDraftInput{DraftID: draft.ID, OwnerID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrDraftNotFoundOrConsumed)
}
