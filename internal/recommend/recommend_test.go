package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snacksync/snacksync-api/internal/youtube"
)

type fakeOracle struct {
	response string
	err      error

	gotPrompt string
	calls     int
}

func (f *fakeOracle) Rank(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	return f.response, f.err
}

type fakeFetcher struct {
	videos []youtube.Video
	err    error
}

func (f *fakeFetcher) FetchLikedVideos(ctx context.Context, googleID string) ([]youtube.Video, error) {
	return f.videos, f.err
}

func TestRecommendReturnsParsedSuggestions(t *testing.T) {
	oracle := &fakeOracle{
		response: `[{"video_id": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up", "reason": "A classic for any meal."}]`,
	}
	service := NewService(&fakeFetcher{videos: []youtube.Video{{ID: "abc", Title: "Pizza dough from scratch"}}}, oracle)

	recommendations, err := service.Recommend(context.Background(), "google-123", []string{"pizza"})
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	assert.Equal(t, "dQw4w9WgXcQ", recommendations[0].VideoID)
	assert.Equal(t, "Never Gonna Give You Up", recommendations[0].Title)
	assert.NotEmpty(t, recommendations[0].Reason)
}

func TestRecommendNothingToReasonOver(t *testing.T) {
	oracle := &fakeOracle{}
	service := NewService(&fakeFetcher{}, oracle)

	_, err := service.Recommend(context.Background(), "google-123", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// The check fires before any model call is made
	assert.Equal(t, 0, oracle.calls)
}

func TestRecommendActivityFailureDegradesToTagsOnly(t *testing.T) {
	oracle := &fakeOracle{response: `[]`}
	service := NewService(&fakeFetcher{err: youtube.ErrNotFound}, oracle)

	recommendations, err := service.Recommend(context.Background(), "google-123", []string{"popcorn"})
	require.NoError(t, err)
	assert.Empty(t, recommendations)
	assert.Equal(t, 1, oracle.calls)
	assert.Contains(t, oracle.gotPrompt, "no recent YouTube activity")
}

func TestRecommendActivityFailureWithoutTagsIsInvalid(t *testing.T) {
	oracle := &fakeOracle{}
	service := NewService(&fakeFetcher{err: youtube.ErrUnauthorized}, oracle)

	_, err := service.Recommend(context.Background(), "google-123", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, oracle.calls)
}

func TestRecommendOracleFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("model overloaded")}
	service := NewService(&fakeFetcher{}, oracle)

	_, err := service.Recommend(context.Background(), "google-123", []string{"pizza"})
	assert.ErrorIs(t, err, ErrOracle)
}

func TestRecommendMalformedOracleOutputYieldsEmptyList(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose instead of JSON", "Here are some videos you might like!"},
		{"JSON object instead of list", `{"video_id": "abc"}`},
		{"null", "null"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&fakeFetcher{}, &fakeOracle{response: tt.response})

			recommendations, err := service.Recommend(context.Background(), "google-123", []string{"pizza"})
			require.NoError(t, err)
			assert.NotNil(t, recommendations)
			assert.Empty(t, recommendations)
		})
	}
}

func TestRecommendPromptCapsActivityLines(t *testing.T) {
	videos := make([]youtube.Video, 30)
	for i := range videos {
		videos[i] = youtube.Video{ID: "v", Title: "Some video", ChannelTitle: "Channel", Duration: "PT10M"}
	}
	oracle := &fakeOracle{response: `[]`}
	service := NewService(&fakeFetcher{videos: videos}, oracle)

	_, err := service.Recommend(context.Background(), "google-123", []string{"pizza"})
	require.NoError(t, err)

	assert.Equal(t, promptActivityLimit, strings.Count(oracle.gotPrompt, "- Title:"))
}

func TestRecommendUnavailableOracle(t *testing.T) {
	service := NewService(&fakeFetcher{}, UnavailableOracle{})

	_, err := service.Recommend(context.Background(), "google-123", []string{"pizza"})
	assert.ErrorIs(t, err, ErrOracle)
}

func TestMealType(t *testing.T) {
	tests := []struct {
		name     string
		foodTags []string
		expected string
	}{
		{"snack keyword", []string{"potato chips"}, "snack"},
		{"meal keyword", []string{"margherita pizza"}, "meal"},
		{"snack wins over meal", []string{"pizza", "popcorn"}, "snack"},
		{"case insensitive", []string{"COOKIES"}, "snack"},
		{"no keyword", []string{"something exotic"}, "unknown"},
		{"no tags", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mealType(tt.foodTags))
		})
	}
}

func TestBuildPromptIncludesFoodAndHistory(t *testing.T) {
	prompt := buildPrompt(
		[]string{"pizza", "garlic bread"},
		[]youtube.Video{{Title: "Wood-fired ovens", ChannelTitle: "Bread Channel", Duration: "PT20M"}},
	)

	assert.Contains(t, prompt, "pizza, garlic bread")
	assert.Contains(t, prompt, "'meal'")
	assert.Contains(t, prompt, "Wood-fired ovens")
	assert.Contains(t, prompt, `"video_id"`)
}
