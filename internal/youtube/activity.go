package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// LikedVideosLimit is how many recent liked videos a fetch requests.
const LikedVideosLimit = 25

// Placeholder values for activity fields the provider omits.
const (
	placeholderCount = "0"
	placeholderText  = "N/A"
)

// Video is one liked-video activity record, in the order the provider
// delivered it.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	Duration     string `json:"duration"`
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	ChannelTitle string `json:"channelTitle"`
}

// Terminal outcomes of a fetch. Controllers map each to its own HTTP status;
// none of them is retried here.
var (
	// ErrNotFound: the user is unknown or no usable access token exists.
	ErrNotFound = errors.New("credentials_not_found")
	// ErrUnauthorized: the credential is expired and cannot be refreshed,
	// or the refresh attempt was rejected. The user must re-authenticate.
	ErrUnauthorized = errors.New("reauthentication_required")
	// ErrRateLimited: the provider reported a quota or rate signal. Retryable
	// by the caller.
	ErrRateLimited = errors.New("rate_limited")
	// ErrForbidden: the provider denied permission (scope or API access),
	// not a quota problem. Not retryable.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream: any other provider failure.
	ErrUpstream = errors.New("upstream_error")
)

// Credential is the narrow view of a live credential the fetch needs: it can
// report expiry, refresh itself, and produce an access token.
type Credential interface {
	// Expired reports whether the access token is known to be stale. A
	// credential with no known expiry is not expired.
	Expired() bool
	// Refreshable reports whether a refresh attempt is possible at all.
	Refreshable() bool
	// Refresh performs one refresh grant against the token endpoint and
	// updates the credential in place.
	Refresh(ctx context.Context) error
	// Token returns the current access token.
	Token() string
}

// CredentialSource produces the live credential for an external user id,
// returning nil when no usable credential exists.
type CredentialSource interface {
	Credentials(ctx context.Context, googleID string) (Credential, error)
}

// Lister fetches the most recently liked videos for an access token.
type Lister interface {
	ListLiked(ctx context.Context, accessToken string, limit int) ([]Video, error)
}

// fetchState enumerates the phases of one fetch. Transitions only move
// forward, which is what guarantees the single refresh attempt.
type fetchState int

const (
	stateNeedCredentials fetchState = iota
	stateHaveCredential
	stateValid
	stateExpired
	stateRefreshing
	stateFetching
)

// Service runs the refresh-and-fetch sequence for one request at a time.
// It holds no per-request state; every invocation is independent.
type Service struct {
	source CredentialSource
	lister Lister
}

// NewService creates a new activity fetch service
func NewService(source CredentialSource, lister Lister) *Service {
	return &Service{source: source, lister: lister}
}

// FetchLikedVideos walks the credential through validation, at most one
// refresh, and a single provider call. Every failure surfaces as one of the
// typed outcomes above.
func (s *Service) FetchLikedVideos(ctx context.Context, googleID string) ([]Video, error) {
	state := stateNeedCredentials
	var cred Credential

	for {
		switch state {
		case stateNeedCredentials:
			var err error
			cred, err = s.source.Credentials(ctx, googleID)
			if err != nil {
				return nil, fmt.Errorf("loading credentials: %w", err)
			}
			if cred == nil {
				return nil, fmt.Errorf("%w: no credentials for user", ErrNotFound)
			}
			state = stateHaveCredential

		case stateHaveCredential:
			if cred.Expired() {
				state = stateExpired
			} else {
				state = stateValid
			}

		case stateExpired:
			if !cred.Refreshable() {
				log.WithField("google_id", googleID).Warn("Credential expired with no way to refresh")
				return nil, fmt.Errorf("%w: token expired and no refresh token is available", ErrUnauthorized)
			}
			state = stateRefreshing

		case stateRefreshing:
			if err := cred.Refresh(ctx); err != nil {
				log.WithField("google_id", googleID).WithError(err).Warn("Token refresh rejected")
				return nil, fmt.Errorf("%w: token refresh failed: %v", ErrUnauthorized, err)
			}
			// The refreshed token is trusted as-is; expiry is not re-checked.
			state = stateValid

		case stateValid:
			state = stateFetching

		case stateFetching:
			videos, err := s.lister.ListLiked(ctx, cred.Token(), LikedVideosLimit)
			if err != nil {
				return nil, classifyFetchError(err)
			}
			return videos, nil
		}
	}
}

// classifyFetchError keeps provider-classified outcomes intact and folds
// everything else into the generic upstream outcome.
func classifyFetchError(err error) error {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
