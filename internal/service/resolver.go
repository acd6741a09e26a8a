// Package service provides business logic services for Zealine.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// ContentResolver dispatches polymorphic content references to the concrete
// store selected by the discriminator. The type enumeration is closed: a
// discriminator outside it resolves to "not found", never to an error class,
// so a malformed reference reads the same as a deleted item.
type ContentResolver struct {
	stores map[domain.ContentType]repository.ContentStore
	logger zerolog.Logger
}

// NewContentResolver creates a resolver over the four concrete content stores.
func NewContentResolver(
	posts repository.PostRepository,
	writePosts repository.WritePostRepository,
	zeals repository.ZealPostRepository,
	polls repository.PollRepository,
	logger zerolog.Logger,
) *ContentResolver {
	return &ContentResolver{
		stores: map[domain.ContentType]repository.ContentStore{
			domain.ContentTypePost:      posts,
			domain.ContentTypeWritePost: writePosts,
			domain.ContentTypeZeal:      zeals,
			domain.ContentTypePoll:      polls,
		},
		logger: logger.With().Str("service", "resolver").Logger(),
	}
}

// Store returns the concrete store for a content type, or false for a
// discriminator outside the enumeration.
func (r *ContentResolver) Store(ct domain.ContentType) (repository.ContentStore, bool) {
	store, ok := r.stores[ct]
	return store, ok
}

// Resolve returns the kind-independent summary for a reference.
// Unknown types and missing items both yield domain.ErrContentNotFound.
func (r *ContentResolver) Resolve(ctx context.Context, ref domain.ContentRef) (*domain.ContentSummary, error) {
	store, ok := r.stores[ref.Type]
	if !ok {
		return nil, domain.ErrContentNotFound
	}

	summary, err := store.GetSummary(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrContentNotFound
		}
		r.logger.Error().
			Err(err).
			Str("content_type", string(ref.Type)).
			Str("content_id", ref.ID.String()).
			Msg("Failed to resolve content reference")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return summary, nil
}

// Exists reports whether the reference points at a live item.
// Unknown types exist for nobody.
func (r *ContentResolver) Exists(ctx context.Context, ref domain.ContentRef) (bool, error) {
	store, ok := r.stores[ref.Type]
	if !ok {
		return false, nil
	}

	exists, err := store.Exists(ctx, ref.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("content_type", string(ref.Type)).
			Str("content_id", ref.ID.String()).
			Msg("Failed to check content existence")
		return false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return exists, nil
}

// ResolveCommentable resolves a reference and enforces that its type
// participates in comment flows. Polls are likeable but not commentable.
func (r *ContentResolver) ResolveCommentable(ctx context.Context, ref domain.ContentRef) (*domain.ContentSummary, error) {
	summary, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ref.Type.SupportsComments() {
		return nil, domain.ErrContentNotCommentable
	}
	return summary, nil
}

// ResolveShareable resolves a reference and enforces that its type
// participates in share flows.
func (r *ContentResolver) ResolveShareable(ctx context.Context, ref domain.ContentRef) (*domain.ContentSummary, error) {
	summary, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ref.Type.SupportsShares() {
		return nil, domain.ErrContentNotShareable
	}
	return summary, nil
}
