package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

func newTestResolver() (*ContentResolver, *mockPostRepository, *mockPollRepository) {
	posts := &mockPostRepository{}
	writePosts := &mockWritePostRepository{}
	zeals := &mockZealPostRepository{}
	polls := &mockPollRepository{}
	resolver := NewContentResolver(posts, writePosts, zeals, polls, zerolog.Nop())
	return resolver, posts, polls
}

func TestContentResolver_Resolve(t *testing.T) {
	t.Run("resolves known type", func(t *testing.T) {
		resolver, posts, _ := newTestResolver()
		id := uuid.New()
		posts.On("GetSummary", mock.Anything, id).Return(&domain.ContentSummary{
			Type: domain.ContentTypePost,
			ID:   id,
		}, nil)

		summary, err := resolver.Resolve(context.Background(), domain.ContentRef{Type: domain.ContentTypePost, ID: id})
		require.NoError(t, err)
		assert.Equal(t, id, summary.ID)
	})

	t.Run("unknown discriminator reads as not found", func(t *testing.T) {
		resolver, _, _ := newTestResolver()

		_, err := resolver.Resolve(context.Background(), domain.ContentRef{Type: "story", ID: uuid.New()})
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
	})

	t.Run("missing item reads as not found", func(t *testing.T) {
		resolver, posts, _ := newTestResolver()
		id := uuid.New()
		posts.On("GetSummary", mock.Anything, id).Return(nil, repository.ErrNotFound)

		_, err := resolver.Resolve(context.Background(), domain.ContentRef{Type: domain.ContentTypePost, ID: id})
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
	})
}

func TestContentResolver_Exists(t *testing.T) {
	resolver, posts, _ := newTestResolver()
	id := uuid.New()
	posts.On("Exists", mock.Anything, id).Return(true, nil)

	exists, err := resolver.Exists(context.Background(), domain.ContentRef{Type: domain.ContentTypePost, ID: id})
	require.NoError(t, err)
	assert.True(t, exists)

	// Unknown types exist for nobody, and never error.
	exists, err = resolver.Exists(context.Background(), domain.ContentRef{Type: "story", ID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestContentResolver_PollAsymmetry(t *testing.T) {
	resolver, _, polls := newTestResolver()
	id := uuid.New()
	polls.On("GetSummary", mock.Anything, id).Return(&domain.ContentSummary{
		Type: domain.ContentTypePoll,
		ID:   id,
	}, nil)

	ref := domain.ContentRef{Type: domain.ContentTypePoll, ID: id}

	_, err := resolver.ResolveCommentable(context.Background(), ref)
	assert.ErrorIs(t, err, domain.ErrContentNotCommentable)

	_, err = resolver.ResolveShareable(context.Background(), ref)
	assert.ErrorIs(t, err, domain.ErrContentNotShareable)

	// The plain resolve still succeeds: polls are likeable and saveable.
	summary, err := resolver.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypePoll, summary.Type)
}
