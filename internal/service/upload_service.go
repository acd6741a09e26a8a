package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/config"
	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/lock"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/pkg/crypto"
	"github.com/prn-tf/zealine/internal/pkg/retry"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

// UploadService orchestrates the media upload pipeline: draft creation,
// strategy selection, chunked byte transfer, and draft-to-content promotion.
type UploadService struct {
	drafts     repository.DraftRepository
	posts      repository.PostRepository
	writePosts repository.WritePostRepository
	zeals      repository.ZealPostRepository
	gateway    blobstore.Gateway
	locker     lock.Locker
	pool       *worker.Pool
	metrics    *metrics.Metrics
	httpClient *http.Client
	logger     zerolog.Logger
	config     config.UploadConfig
}

// NewUploadService creates a new upload service. httpClient carries the
// chunk PUTs to the storage gateway; pass nil to use http.DefaultClient.
func NewUploadService(
	drafts repository.DraftRepository,
	posts repository.PostRepository,
	writePosts repository.WritePostRepository,
	zeals repository.ZealPostRepository,
	gateway blobstore.Gateway,
	locker lock.Locker,
	pool *worker.Pool,
	m *metrics.Metrics,
	httpClient *http.Client,
	logger zerolog.Logger,
	cfg config.UploadConfig,
) *UploadService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.PartTimeout <= 0 {
		cfg.PartTimeout = 60 * time.Second
	}
	if cfg.PartConcurrency <= 0 {
		cfg.PartConcurrency = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryInitialDelay <= 0 {
		cfg.RetryInitialDelay = 1 * time.Second
	}
	return &UploadService{
		drafts:     drafts,
		posts:      posts,
		writePosts: writePosts,
		zeals:      zeals,
		gateway:    gateway,
		locker:     locker,
		pool:       pool,
		metrics:    m,
		httpClient: httpClient,
		logger:     logger.With().Str("service", "upload").Logger(),
		config:     cfg,
	}
}

// ===== Input/Output Structs =====

// StartUploadInput contains parameters for starting an upload.
type StartUploadInput struct {
	OwnerID  uuid.UUID
	Kind     domain.MediaKind
	FileName string
	FileSize int64
	MIMEType string
}

// StartUploadOutput contains the created draft and, for single-part uploads,
// the presigned PUT the client should use. Multipart transfers are driven
// server-side through UploadFile instead.
type StartUploadOutput struct {
	Draft  *domain.UploadDraft
	Upload *blobstore.PresignedUpload
}

// UploadFileInput contains parameters for the server-side byte transfer.
type UploadFileInput struct {
	DraftID uuid.UUID
	OwnerID uuid.UUID

	// FilePath is the spooled upload on local disk.
	FilePath string

	// RemoveFile removes FilePath once the transfer finishes, regardless of
	// outcome.
	RemoveFile bool
}

// UploadFileOutput contains the result of a byte transfer.
type UploadFileOutput struct {
	Draft    *domain.UploadDraft
	MediaURL string
}

// CreateContentInput contains parameters for promoting a draft to content.
type CreateContentInput struct {
	DraftID uuid.UUID
	OwnerID uuid.UUID
	Type    domain.ContentType

	// Caption is used for posts and zeal posts.
	Caption string

	// Title and Body are used for write posts.
	Title string
	Body  string
}

// CreateContentOutput contains the created content summary.
type CreateContentOutput struct {
	Summary *domain.ContentSummary
}

// GetDraftInput contains parameters for reading a draft.
type GetDraftInput struct {
	DraftID uuid.UUID
	OwnerID uuid.UUID
}

// GetDraftOutput contains the draft.
type GetDraftOutput struct {
	Draft *domain.UploadDraft
}

// ===== Service Methods =====

// StartUpload validates the declared file, selects the transfer strategy,
// and persists a new draft. Videos at or above the multipart threshold get a
// chunked session; everything else gets a single presigned PUT.
func (s *UploadService) StartUpload(ctx context.Context, input StartUploadInput) (*StartUploadOutput, error) {
	if input.FileName == "" {
		return nil, ErrInvalidFileName
	}
	if input.FileSize <= 0 {
		return nil, ErrInvalidFileSize
	}
	if !input.Kind.IsValid() || !domain.IsAllowedMIMEType(input.Kind, input.MIMEType) {
		return nil, domain.ErrInvalidMediaType
	}
	if input.FileSize > domain.MaxSizeFor(input.Kind) {
		return nil, domain.ErrFileTooLarge
	}

	pending, err := s.drafts.CountPending(ctx, input.OwnerID, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", input.OwnerID.String()).Msg("Failed to count pending drafts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if pending >= domain.MaxPendingDrafts {
		return nil, domain.ErrTooManyPendingUploads
	}

	key := s.gateway.GenerateKey(input.OwnerID, input.Kind, input.MIMEType)

	multipart := input.Kind == domain.MediaKindVideo && input.FileSize >= domain.MultipartThreshold

	var (
		draft    *domain.UploadDraft
		presign  *blobstore.PresignedUpload
		strategy = "simple"
	)

	if multipart {
		strategy = "multipart"
		sessionID, err := s.gateway.InitiateMultipart(ctx, key, input.MIMEType)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to initiate multipart session")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		draft = domain.NewMultipartDraft(input.OwnerID, input.Kind, input.FileName, input.FileSize, input.MIMEType, key, sessionID)
	} else {
		presign, err = s.gateway.PresignUpload(ctx, key, input.MIMEType, domain.SimpleUploadTTL)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to presign upload")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		draft = domain.NewSimpleDraft(input.OwnerID, input.Kind, input.FileName, input.FileSize, input.MIMEType, key)
	}

	if err := s.drafts.Create(ctx, draft); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to create draft")
		if draft.IsMultipart {
			s.abortSession(draft)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.metrics != nil {
		s.metrics.UploadsStarted.WithLabelValues(string(input.Kind), strategy).Inc()
	}

	s.logger.Info().
		Str("draft_id", draft.ID.String()).
		Str("owner_id", input.OwnerID.String()).
		Str("kind", string(input.Kind)).
		Str("strategy", strategy).
		Int64("size", input.FileSize).
		Msg("Upload started")

	return &StartUploadOutput{Draft: draft, Upload: presign}, nil
}

// UploadFile transfers the spooled file to object storage on behalf of the
// client. Multipart drafts are sent as fixed-size chunks in parallel, each
// chunk with its own timeout and retry budget. On success the draft records
// the completed parts and the derived media URL; on unrecoverable failure it
// transitions to failed and the multipart session is aborted.
func (s *UploadService) UploadFile(ctx context.Context, input UploadFileInput) (*UploadFileOutput, error) {
	cleanup := func() {
		if !input.RemoveFile {
			return
		}
		if err := os.Remove(input.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", input.FilePath).Msg("Failed to remove spooled upload")
		}
	}

	draft, err := s.getOwnedDraft(ctx, input.DraftID, input.OwnerID)
	if err != nil {
		cleanup()
		return nil, err
	}
	if draft.Status != domain.DraftStatusDraft {
		cleanup()
		return nil, domain.ErrDraftNotFoundOrConsumed
	}
	if draft.IsExpired() {
		cleanup()
		return nil, domain.ErrDraftExpired
	}
	if draft.BytesUploaded() {
		// Transfer already finished; the call is a retry of a lost response.
		cleanup()
		return &UploadFileOutput{Draft: draft, MediaURL: draft.MediaURL}, nil
	}

	info, err := os.Stat(input.FilePath)
	if err != nil {
		cleanup()
		s.logger.Error().Err(err).Str("path", input.FilePath).Msg("Failed to stat spooled upload")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if info.Size() != draft.FileSize {
		cleanup()
		return nil, ErrDeclaredSizeMismatch
	}

	lockKey := lock.Keys.UploadDraft(draft.ID)
	acquired, err := s.locker.Acquire(ctx, lockKey, domain.MultipartUploadTTL)
	if err != nil {
		cleanup()
		s.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to acquire draft lock")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		cleanup()
		return nil, ErrUploadInProgress
	}

	// Chunked transfers detach: the request returns with the draft still in
	// progress and the caller polls GetDraft. The task owns the lock and the
	// spool file from here.
	if draft.IsMultipart && s.pool != nil {
		submitted := s.pool.Submit("chunked_transfer", func(taskCtx context.Context) error {
			defer cleanup()
			defer s.releaseDraftLock(draft.ID, lockKey)
			_, err := s.transferDraft(taskCtx, draft, input.FilePath)
			return err
		})
		if submitted {
			// The task mutates draft as the transfer progresses; hand the
			// caller a snapshot.
			snapshot := *draft
			return &UploadFileOutput{Draft: &snapshot}, nil
		}
		// Queue full: transfer inline rather than dropping the upload.
	}

	defer cleanup()
	defer s.releaseDraftLock(draft.ID, lockKey)
	return s.transferDraft(ctx, draft, input.FilePath)
}

// transferDraft moves the spooled bytes to storage and records completion on
// the draft. Callers hold the draft lock.
func (s *UploadService) transferDraft(ctx context.Context, draft *domain.UploadDraft, path string) (*UploadFileOutput, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to open spooled upload")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	defer file.Close()

	var parts []domain.UploadedPart
	if draft.IsMultipart {
		parts, err = s.transferChunked(ctx, draft, file)
	} else {
		err = s.transferSimple(ctx, draft, file)
	}
	if err != nil {
		s.failDraft(ctx, draft, err)
		if s.metrics != nil {
			s.metrics.UploadsFailed.WithLabelValues(string(draft.Kind)).Inc()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	mediaURL := s.gateway.PublicURL(draft.StorageKey)
	uploadedAt := time.Now().UTC()
	if err := s.drafts.MarkUploaded(ctx, draft.ID, parts, mediaURL, uploadedAt); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to mark draft uploaded")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	draft.Parts = parts
	draft.MediaURL = mediaURL
	draft.UploadedAt = &uploadedAt

	if s.metrics != nil {
		s.metrics.UploadsCompleted.WithLabelValues(string(draft.Kind)).Inc()
		s.metrics.UploadBytes.Add(float64(draft.FileSize))
		s.metrics.UploadDuration.Observe(time.Since(start).Seconds())
	}

	s.logger.Info().
		Str("draft_id", draft.ID.String()).
		Int64("size", draft.FileSize).
		Int("parts", len(parts)).
		Dur("duration", time.Since(start)).
		Msg("Upload transfer completed")

	return &UploadFileOutput{Draft: draft, MediaURL: mediaURL}, nil
}

func (s *UploadService) releaseDraftLock(draftID uuid.UUID, lockKey string) {
	if _, err := s.locker.Release(context.Background(), lockKey); err != nil {
		s.logger.Warn().Err(err).Str("draft_id", draftID.String()).Msg("Failed to release draft lock")
	}
}

// CreateContent promotes a byte-complete draft into a published content
// entity. The draft is consumed first, atomically, so a duplicate request can
// never yield two entities: the loser of the race sees the draft as gone.
func (s *UploadService) CreateContent(ctx context.Context, input CreateContentInput) (*CreateContentOutput, error) {
	switch input.Type {
	case domain.ContentTypePost, domain.ContentTypeWritePost, domain.ContentTypeZeal:
	case domain.ContentTypePoll:
		return nil, ErrNotMediaBacked
	default:
		return nil, domain.ErrUnknownContentType
	}

	draft, err := s.getOwnedDraft(ctx, input.DraftID, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.DraftStatusDraft {
		return nil, domain.ErrDraftNotFoundOrConsumed
	}
	if draft.IsExpired() {
		return nil, domain.ErrDraftExpired
	}
	// Server-side chunked transfers record completion on the draft. Simple
	// drafts may have been PUT to storage directly by the client, so the
	// existence check below is their completion proof.
	if draft.IsMultipart && !draft.BytesUploaded() {
		return nil, domain.ErrUploadIncomplete
	}

	exists, err := s.gateway.Exists(ctx, draft.StorageKey)
	if err != nil {
		s.logger.Error().Err(err).Str("key", draft.StorageKey).Msg("Failed to check object existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !exists {
		s.failDraft(ctx, draft, domain.ErrFileNotFoundInStorage)
		return nil, domain.ErrFileNotFoundInStorage
	}

	// Consume before creating the entity. If creation fails afterwards the
	// draft is lost, which is recoverable by re-uploading; the inverse order
	// could publish the same draft twice.
	if err := s.drafts.Consume(ctx, draft.ID, input.OwnerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrDraftNotFoundOrConsumed
		}
		s.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to consume draft")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	mediaURL := draft.MediaURL
	if mediaURL == "" {
		mediaURL = s.gateway.PublicURL(draft.StorageKey)
	}

	summary, err := s.createEntity(ctx, input, mediaURL)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ContentCreated.WithLabelValues(string(input.Type)).Inc()
	}

	s.logger.Info().
		Str("draft_id", draft.ID.String()).
		Str("content_type", string(input.Type)).
		Str("content_id", summary.ID.String()).
		Msg("Content created from draft")

	return &CreateContentOutput{Summary: summary}, nil
}

// GetDraft returns a draft for status polling. Ownership is enforced: a
// foreign draft reads the same as a missing one.
func (s *UploadService) GetDraft(ctx context.Context, input GetDraftInput) (*GetDraftOutput, error) {
	draft, err := s.getOwnedDraft(ctx, input.DraftID, input.OwnerID)
	if err != nil {
		return nil, err
	}
	return &GetDraftOutput{Draft: draft}, nil
}

// ===== Internal Helpers =====

func (s *UploadService) getOwnedDraft(ctx context.Context, draftID, ownerID uuid.UUID) (*domain.UploadDraft, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrDraftNotFoundOrConsumed
		}
		s.logger.Error().Err(err).Str("draft_id", draftID.String()).Msg("Failed to get draft")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if draft.OwnerID != ownerID {
		return nil, domain.ErrDraftNotFoundOrConsumed
	}
	return draft, nil
}

// transferSimple sends the whole file through one presigned PUT.
func (s *UploadService) transferSimple(ctx context.Context, draft *domain.UploadDraft, file *os.File) error {
	presign, err := s.gateway.PresignUpload(ctx, draft.StorageKey, draft.MIMEType, domain.SimpleUploadTTL)
	if err != nil {
		return fmt.Errorf("presign upload: %w", err)
	}

	_, err = s.putRange(ctx, presign.URL, presign.Headers, file, 0, draft.FileSize)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// transferChunked sends the file as fixed-size parts in parallel, then
// completes the multipart session. Parts are sorted by part number before
// completion; the gateway requires ascending order.
func (s *UploadService) transferChunked(ctx context.Context, draft *domain.UploadDraft, file *os.File) ([]domain.UploadedPart, error) {
	var (
		mu    sync.Mutex
		parts = make([]domain.UploadedPart, 0, draft.TotalChunks)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.PartConcurrency)

	for partNumber := 1; partNumber <= draft.TotalChunks; partNumber++ {
		partNumber := partNumber
		g.Go(func() error {
			part, err := s.transferPart(gctx, draft, file, partNumber)
			if err != nil {
				return err
			}
			mu.Lock()
			parts = append(parts, *part)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.abortSession(draft)
		return nil, err
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

	completed := make([]blobstore.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = blobstore.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag}
	}

	if _, err := s.gateway.CompleteMultipart(ctx, draft.StorageKey, draft.SessionID, completed); err != nil {
		s.abortSession(draft)
		return nil, fmt.Errorf("complete multipart: %w", err)
	}

	return parts, nil
}

// transferPart uploads one chunk with a per-attempt timeout and the
// configured retry schedule. Only transient network failures retry.
func (s *UploadService) transferPart(ctx context.Context, draft *domain.UploadDraft, file *os.File, partNumber int) (*domain.UploadedPart, error) {
	offset, length, err := draft.PartRange(partNumber)
	if err != nil {
		return nil, err
	}

	url, err := s.gateway.PresignPartUpload(ctx, draft.StorageKey, draft.SessionID, partNumber, domain.MultipartUploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign part %d: %w", partNumber, err)
	}

	opts := retry.Options{
		MaxAttempts:     uint64(s.config.MaxAttempts),
		InitialInterval: s.config.RetryInitialDelay,
		Multiplier:      2.0,
		MaxInterval:     30 * time.Second,
	}

	var (
		etag    string
		attempt int
	)
	err = retry.Do(ctx, opts, func(ctx context.Context) error {
		attempt++
		if attempt > 1 && s.metrics != nil {
			s.metrics.PartRetries.Inc()
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.config.PartTimeout)
		defer cancel()

		var putErr error
		etag, putErr = s.putRange(attemptCtx, url, nil, file, offset, length)
		if putErr != nil {
			s.logger.Warn().
				Err(putErr).
				Str("draft_id", draft.ID.String()).
				Int("part", partNumber).
				Int("attempt", attempt).
				Msg("Chunk transfer attempt failed")
			// A timeout of the attempt context is transient; a cancellation
			// of the transfer context is not.
			if attemptCtx.Err() != nil && ctx.Err() == nil {
				return fmt.Errorf("part %d: %w", partNumber, retry.NewHTTPStatusError(http.StatusRequestTimeout, url))
			}
		}
		return putErr
	})
	if err != nil {
		return nil, fmt.Errorf("upload part %d: %w", partNumber, err)
	}

	return &domain.UploadedPart{
		PartNumber:  partNumber,
		ETag:        etag,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// putRange PUTs [offset, offset+length) of the file to url and returns the
// ETag the gateway reported. ReadAt-based section readers keep concurrent
// chunk reads off a shared file handle safe. The outgoing bytes are hashed in
// the same pass so the reported ETag can be checked against what was sent.
func (s *UploadService) putRange(ctx context.Context, url string, headers map[string]string, file *os.File, offset, length int64) (string, error) {
	body := crypto.NewHashReader(io.NewSectionReader(file, offset, length))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return "", err
	}
	req.ContentLength = length
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", retry.NewHTTPStatusError(resp.StatusCode, url)
	}

	etag := resp.Header.Get("ETag")
	// Gateways using server-side encryption return opaque ETags; only a plain
	// MD5 ETag is comparable to the local digest.
	if isMD5ETag(etag) && etag != body.ETag() {
		return "", fmt.Errorf("gateway etag %s does not match sent bytes", etag)
	}

	return etag, nil
}

func isMD5ETag(etag string) bool {
	trimmed := strings.Trim(etag, `"`)
	if len(trimmed) != 32 {
		return false
	}
	_, err := hex.DecodeString(trimmed)
	return err == nil
}

func (s *UploadService) createEntity(ctx context.Context, input CreateContentInput, mediaURL string) (*domain.ContentSummary, error) {
	switch input.Type {
	case domain.ContentTypePost:
		post := domain.NewPost(input.OwnerID, input.Caption, []string{mediaURL})
		if err := s.posts.Create(ctx, post); err != nil {
			s.logger.Error().Err(err).Str("post_id", post.ID.String()).Msg("Failed to create post")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.enqueuePostProcess(domain.ContentRef{Type: input.Type, ID: post.ID})
		return &domain.ContentSummary{
			Type: input.Type, ID: post.ID, AuthorID: post.AuthorID,
			Status: post.Status, Title: post.Caption, MediaURL: mediaURL, CreatedAt: post.CreatedAt,
		}, nil

	case domain.ContentTypeWritePost:
		wp := domain.NewWritePost(input.OwnerID, input.Title, input.Body, mediaURL)
		if err := s.writePosts.Create(ctx, wp); err != nil {
			s.logger.Error().Err(err).Str("write_post_id", wp.ID.String()).Msg("Failed to create write post")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.enqueuePostProcess(domain.ContentRef{Type: input.Type, ID: wp.ID})
		return &domain.ContentSummary{
			Type: input.Type, ID: wp.ID, AuthorID: wp.AuthorID,
			Status: wp.Status, Title: wp.Title, MediaURL: mediaURL, CreatedAt: wp.CreatedAt,
		}, nil

	default:
		zeal := domain.NewZealPost(input.OwnerID, input.Caption, mediaURL)
		if err := s.zeals.Create(ctx, zeal); err != nil {
			s.logger.Error().Err(err).Str("zeal_id", zeal.ID.String()).Msg("Failed to create zeal post")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		s.enqueuePostProcess(domain.ContentRef{Type: input.Type, ID: zeal.ID})
		return &domain.ContentSummary{
			Type: input.Type, ID: zeal.ID, AuthorID: zeal.AuthorID,
			Status: zeal.Status, Title: zeal.Caption, MediaURL: mediaURL, CreatedAt: zeal.CreatedAt,
		}, nil
	}
}

// enqueuePostProcess flips the new entity from processing to ready in the
// background. UpdateStatus never overwrites a terminal status, so replays of
// the task are harmless.
func (s *UploadService) enqueuePostProcess(ref domain.ContentRef) {
	if s.pool == nil {
		return
	}
	store := s.storeFor(ref.Type)
	if store == nil {
		return
	}
	s.pool.Submit("content_postprocess", func(ctx context.Context) error {
		if err := store.UpdateStatus(ctx, ref.ID, domain.ContentStatusReady, ""); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		return nil
	})
}

func (s *UploadService) storeFor(ct domain.ContentType) repository.ContentStore {
	switch ct {
	case domain.ContentTypePost:
		return s.posts
	case domain.ContentTypeWritePost:
		return s.writePosts
	case domain.ContentTypeZeal:
		return s.zeals
	default:
		return nil
	}
}

func (s *UploadService) failDraft(ctx context.Context, draft *domain.UploadDraft, cause error) {
	if draft.IsMultipart {
		s.abortSession(draft)
	}
	if err := s.drafts.MarkFailed(ctx, draft.ID, cause.Error()); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to mark draft failed")
	}
}

// abortSession discards the multipart session best-effort; the expired-draft
// sweep picks up anything this misses.
func (s *UploadService) abortSession(draft *domain.UploadDraft) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.gateway.AbortMultipart(ctx, draft.StorageKey, draft.SessionID); err != nil && !errors.Is(err, blobstore.ErrSessionNotFound) {
		s.logger.Warn().
			Err(err).
			Str("draft_id", draft.ID.String()).
			Str("session_id", draft.SessionID).
			Msg("Failed to abort multipart session")
	}
}
