package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCredential scripts the expiry/refresh behavior the state machine reacts to.
type fakeCredential struct {
	expired     bool
	refreshable bool
	refreshErr  error
	token       string

	refreshCalls int
}

func (f *fakeCredential) Expired() bool     { return f.expired }
func (f *fakeCredential) Refreshable() bool { return f.refreshable }
func (f *fakeCredential) Token() string     { return f.token }

func (f *fakeCredential) Refresh(ctx context.Context) error {
	f.refreshCalls++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.expired = false
	f.token = "refreshed-token"
	return nil
}

type fakeSource struct {
	credential Credential
	err        error
}

func (f *fakeSource) Credentials(ctx context.Context, googleID string) (Credential, error) {
	return f.credential, f.err
}

type fakeLister struct {
	videos []Video
	err    error

	gotToken string
	gotLimit int
	calls    int
}

func (f *fakeLister) ListLiked(ctx context.Context, accessToken string, limit int) ([]Video, error) {
	f.calls++
	f.gotToken = accessToken
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.videos, nil
}

func TestFetchLikedVideosValidCredential(t *testing.T) {
	lister := &fakeLister{videos: []Video{{ID: "abc", Title: "Cooking with fire"}}}
	service := NewService(&fakeSource{credential: &fakeCredential{token: "live-token"}}, lister)

	videos, err := service.FetchLikedVideos(context.Background(), "google-123")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "abc", videos[0].ID)
	assert.Equal(t, "live-token", lister.gotToken)
	assert.Equal(t, LikedVideosLimit, lister.gotLimit)
}

func TestFetchLikedVideosNoCredentials(t *testing.T) {
	service := NewService(&fakeSource{credential: nil}, &fakeLister{})

	_, err := service.FetchLikedVideos(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchLikedVideosSourceError(t *testing.T) {
	service := NewService(&fakeSource{err: errors.New("db down")}, &fakeLister{})

	_, err := service.FetchLikedVideos(context.Background(), "google-123")
	require.Error(t, err)
	// Infrastructure failures are not one of the typed credential outcomes
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestFetchLikedVideosRefreshesExpiredCredential(t *testing.T) {
	credential := &fakeCredential{expired: true, refreshable: true, token: "stale-token"}
	lister := &fakeLister{videos: []Video{{ID: "abc"}}}
	service := NewService(&fakeSource{credential: credential}, lister)

	videos, err := service.FetchLikedVideos(context.Background(), "google-123")
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	// Exactly one refresh, and the fetch used the refreshed token
	assert.Equal(t, 1, credential.refreshCalls)
	assert.Equal(t, "refreshed-token", lister.gotToken)
}

func TestFetchLikedVideosExpiredWithoutRefreshMaterial(t *testing.T) {
	credential := &fakeCredential{expired: true, refreshable: false}
	lister := &fakeLister{}
	service := NewService(&fakeSource{credential: credential}, lister)

	_, err := service.FetchLikedVideos(context.Background(), "google-123")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, credential.refreshCalls)
	assert.Equal(t, 0, lister.calls)
}

func TestFetchLikedVideosRefreshRejected(t *testing.T) {
	credential := &fakeCredential{
		expired:     true,
		refreshable: true,
		refreshErr:  errors.New("invalid_grant"),
	}
	lister := &fakeLister{}
	service := NewService(&fakeSource{credential: credential}, lister)

	_, err := service.FetchLikedVideos(context.Background(), "google-123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// No second attempt, no provider call with a known-bad token
	assert.Equal(t, 1, credential.refreshCalls)
	assert.Equal(t, 0, lister.calls)
}

func TestFetchLikedVideosUnknownExpiryIsTrustedAsValid(t *testing.T) {
	credential := &fakeCredential{token: "opaque-token"}
	lister := &fakeLister{videos: []Video{}}
	service := NewService(&fakeSource{credential: credential}, lister)

	videos, err := service.FetchLikedVideos(context.Background(), "google-123")
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Equal(t, 0, credential.refreshCalls)
}

func TestFetchLikedVideosProviderOutcomesPassThrough(t *testing.T) {
	tests := []struct {
		name      string
		listerErr error
		expected  error
	}{
		{"rate limited", ErrRateLimited, ErrRateLimited},
		{"forbidden", ErrForbidden, ErrForbidden},
		{"unauthorized", ErrUnauthorized, ErrUnauthorized},
		{"upstream", ErrUpstream, ErrUpstream},
		{"unclassified wraps as upstream", errors.New("connection reset"), ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(
				&fakeSource{credential: &fakeCredential{token: "live-token"}},
				&fakeLister{err: tt.listerErr},
			)

			_, err := service.FetchLikedVideos(context.Background(), "google-123")
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestFetchLikedVideosIndependentInvocations(t *testing.T) {
	// A fresh expired credential on each call: both fetches refresh once,
	// nothing leaks between requests.
	var issued []*fakeCredential
	source := &issuingSource{issue: func() Credential {
		credential := &fakeCredential{expired: true, refreshable: true}
		issued = append(issued, credential)
		return credential
	}}
	service := NewService(source, &fakeLister{videos: []Video{}})

	for i := 0; i < 2; i++ {
		_, err := service.FetchLikedVideos(context.Background(), "google-123")
		require.NoError(t, err)
	}

	require.Len(t, issued, 2)
	assert.Equal(t, 1, issued[0].refreshCalls)
	assert.Equal(t, 1, issued[1].refreshCalls)
}

type issuingSource struct {
	issue func() Credential
}

func (s *issuingSource) Credentials(ctx context.Context, googleID string) (Credential, error) {
	return s.issue(), nil
}

func TestFetchLikedVideosContextIsPropagated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	lister := &ctxCapturingLister{}
	service := NewService(&fakeSource{credential: &fakeCredential{token: "live-token"}}, lister)

	_, err := service.FetchLikedVideos(ctx, "google-123")
	require.NoError(t, err)
	assert.Equal(t, ctx, lister.gotCtx)
}

type ctxCapturingLister struct {
	gotCtx context.Context
}

func (l *ctxCapturingLister) ListLiked(ctx context.Context, accessToken string, limit int) ([]Video, error) {
	l.gotCtx = ctx
	return []Video{}, nil
}
