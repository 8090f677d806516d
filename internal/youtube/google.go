package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/snacksync/snacksync-api/internal/services"
)

// GoogleSource adapts the credential assembler into the CredentialSource the
// state machine consumes.
type GoogleSource struct {
	credentials services.CredentialService
}

// NewGoogleSource creates a CredentialSource backed by the credential store
func NewGoogleSource(credentials services.CredentialService) *GoogleSource {
	return &GoogleSource{credentials: credentials}
}

func (s *GoogleSource) Credentials(ctx context.Context, googleID string) (Credential, error) {
	live, err := s.credentials.AssembleCredentials(googleID)
	if err != nil {
		return nil, err
	}
	if live == nil {
		return nil, nil
	}
	return &googleCredential{live: live}, nil
}

// googleCredential wraps a LiveCredential with a refresh grant against the
// stored token endpoint.
type googleCredential struct {
	live *services.LiveCredential
}

func (g *googleCredential) Expired() bool     { return g.live.Expired() }
func (g *googleCredential) Refreshable() bool { return g.live.Refreshable() }
func (g *googleCredential) Token() string     { return g.live.AccessToken }

// Refresh performs a single refresh_token grant and updates the live
// credential in place. The caller decides whether to attempt it at all.
func (g *googleCredential) Refresh(ctx context.Context) error {
	conf := &oauth2.Config{
		ClientID:     g.live.ClientID,
		ClientSecret: g.live.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: g.live.TokenURI},
		Scopes:       g.live.Scopes,
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: g.live.RefreshToken}).Token()
	if err != nil {
		return err
	}

	g.live.AccessToken = token.AccessToken
	g.live.Expiry = token.Expiry
	if token.RefreshToken != "" {
		g.live.RefreshToken = token.RefreshToken
	}
	return nil
}

// GoogleLister fetches liked videos through the YouTube Data API.
type GoogleLister struct{}

// NewGoogleLister creates a Lister backed by the YouTube Data API
func NewGoogleLister() *GoogleLister {
	return &GoogleLister{}
}

func (l *GoogleLister) ListLiked(ctx context.Context, accessToken string, limit int) ([]Video, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	service, err := ytapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("%w: building youtube client: %v", ErrUpstream, err)
	}

	call := service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		MyRating("like").
		MaxResults(int64(limit))
	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError(err)
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		videos = append(videos, videoFromAPI(item))
	}
	return videos, nil
}

// videoFromAPI flattens one API item into an activity record, substituting
// placeholders for anything the API omitted.
func videoFromAPI(item *ytapi.Video) Video {
	video := Video{
		ID:           item.Id,
		Title:        placeholderText,
		Thumbnail:    "",
		Duration:     placeholderText,
		ViewCount:    placeholderCount,
		LikeCount:    placeholderCount,
		ChannelTitle: placeholderText,
	}

	if item.Snippet != nil {
		if item.Snippet.Title != "" {
			video.Title = item.Snippet.Title
		}
		if item.Snippet.ChannelTitle != "" {
			video.ChannelTitle = item.Snippet.ChannelTitle
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			video.Thumbnail = item.Snippet.Thumbnails.Default.Url
		}
	}
	if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
		video.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		video.ViewCount = strconv.FormatUint(item.Statistics.ViewCount, 10)
		video.LikeCount = strconv.FormatUint(item.Statistics.LikeCount, 10)
	}
	return video
}

// quotaReasons are the googleapi error reasons that indicate quota or rate
// pressure rather than a permission problem.
var quotaReasons = map[string]bool{
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"youtube.quota":         true,
	"servingLimitExceeded":  true,
}

// classifyAPIError maps a YouTube Data API failure onto the typed fetch
// outcomes: quota signals become ErrRateLimited, other 403s ErrForbidden,
// 401s ErrUnauthorized, and the rest ErrUpstream.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	case http.StatusForbidden:
		for _, item := range apiErr.Errors {
			if quotaReasons[item.Reason] {
				return fmt.Errorf("%w: %s", ErrRateLimited, item.Reason)
			}
		}
		return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: provider rejected the access token", ErrUnauthorized)
	default:
		return fmt.Errorf("%w: %s", ErrUpstream, apiErr.Message)
	}
}
