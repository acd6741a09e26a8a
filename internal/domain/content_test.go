package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType_Capabilities(t *testing.T) {
	tests := []struct {
		ct              ContentType
		valid           bool
		supportsComment bool
		supportsShare   bool
		modelName       string
	}{
		{ContentTypePost, true, true, true, "Post"},
		{ContentTypeWritePost, true, true, true, "WritePost"},
		{ContentTypeZeal, true, true, true, "ZealPost"},
		{ContentTypePoll, true, false, false, "Poll"},
		{ContentType("story"), false, false, false, ""},
		{ContentType(""), false, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.ct.IsValid())
			assert.Equal(t, tt.supportsComment, tt.ct.SupportsComments())
			assert.Equal(t, tt.supportsShare, tt.ct.SupportsShares())
			assert.Equal(t, tt.modelName, tt.ct.ModelName())
		})
	}
}

func TestContentStatus_IsTerminal(t *testing.T) {
	assert.False(t, ContentStatusProcessing.IsTerminal())
	assert.True(t, ContentStatusReady.IsTerminal())
	assert.True(t, ContentStatusFailed.IsTerminal())
}

func TestNewPoll(t *testing.T) {
	authorID := uuid.New()

	poll, err := NewPoll(authorID, "favorite season?", []string{"summer", "winter"})
	require.NoError(t, err)
	assert.Equal(t, authorID, poll.AuthorID)
	assert.Equal(t, ContentStatusReady, poll.Status)

	_, err = NewPoll(authorID, "q", []string{"only one"})
	assert.ErrorIs(t, err, ErrInvalidPollOptions)

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "option"
	}
	_, err = NewPoll(authorID, "q", eleven)
	assert.ErrorIs(t, err, ErrInvalidPollOptions)
}

func TestNewContent_StartsProcessing(t *testing.T) {
	post := NewPost(uuid.New(), "caption", []string{"https://cdn/img.jpg"})
	assert.Equal(t, ContentStatusProcessing, post.Status)

	write := NewWritePost(uuid.New(), "title", "body", "")
	assert.Equal(t, ContentStatusProcessing, write.Status)

	zeal := NewZealPost(uuid.New(), "caption", "https://cdn/clip.mp4")
	assert.Equal(t, ContentStatusProcessing, zeal.Status)
}

func TestValidateHandle(t *testing.T) {
	assert.True(t, ValidateHandle("alice_01"))
	assert.True(t, ValidateHandle("bob"))
	assert.False(t, ValidateHandle("ab"), "too short")
	assert.False(t, ValidateHandle("Uppercase"))
	assert.False(t, ValidateHandle("has space"))
	assert.False(t, ValidateHandle("has-dash"))
	assert.False(t, ValidateHandle(""))
}

func TestReportReason_IsValid(t *testing.T) {
	assert.True(t, ReportReasonSpam.IsValid())
	assert.False(t, ReportReason("bogus").IsValid())
}
