package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snacksync/snacksync-api/internal/youtube"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

var (
	// ErrInvalidRequest: there is nothing to reason over — no food tags and
	// no viewing history.
	ErrInvalidRequest = errors.New("nothing_to_recommend")
	// ErrOracle: the ranking model call itself failed. Distinct from the
	// model returning zero recommendations, which is a valid empty result.
	ErrOracle = errors.New("oracle_unavailable")
)

// promptActivityLimit caps how many liked videos are summarized into the
// prompt to keep it concise.
const promptActivityLimit = 10

// Recommendation is one ranked video suggestion.
type Recommendation struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Reason  string `json:"reason"`
}

// Oracle is the ranking model behind a text-in/text-out contract. The raw
// response is expected to be a JSON list of recommendations, but that is the
// orchestrator's problem, not the oracle's.
type Oracle interface {
	Rank(ctx context.Context, prompt string) (string, error)
}

// UnavailableOracle stands in when no ranking model is configured. Every
// call fails, which surfaces to callers as an upstream error.
type UnavailableOracle struct{}

// Rank always reports the missing configuration.
func (UnavailableOracle) Rank(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("ranking model is not configured")
}

// ActivityFetcher runs the refresh-and-fetch sequence for a user.
type ActivityFetcher interface {
	FetchLikedVideos(ctx context.Context, googleID string) ([]youtube.Video, error)
}

// Service combines viewing history and food tags into oracle prompts and
// normalizes the responses.
type Service struct {
	fetcher ActivityFetcher
	oracle  Oracle
}

// NewService creates a new recommendation service
func NewService(fetcher ActivityFetcher, oracle Oracle) *Service {
	return &Service{fetcher: fetcher, oracle: oracle}
}

// Recommend produces up to a handful of video suggestions for the given food
// tags. Activity enrichment is best-effort: any fetch failure degrades to an
// empty history rather than failing the recommendation.
func (s *Service) Recommend(ctx context.Context, googleID string, foodTags []string) ([]Recommendation, error) {
	activity, err := s.fetcher.FetchLikedVideos(ctx, googleID)
	if err != nil {
		log.WithFields(logrus.Fields{
			"google_id": googleID,
		}).WithError(err).Info("Proceeding without YouTube activity")
		activity = nil
	}

	if len(foodTags) == 0 && len(activity) == 0 {
		return nil, fmt.Errorf("%w: no food tags and no viewing history", ErrInvalidRequest)
	}

	prompt := buildPrompt(foodTags, activity)

	raw, err := s.oracle.Rank(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracle, err)
	}

	return parseRecommendations(raw), nil
}

// mealType classifies the tag set so the prompt can ask for an appropriate
// video length. Snack keywords win over meal keywords when both match.
func mealType(foodTags []string) string {
	snackKeywords := []string{"chip", "chips", "cookie", "cookies", "popcorn", "candy", "fruit", "nuts", "yogurt", "cracker"}
	mealKeywords := []string{"pizza", "pasta", "steak", "burger", "salad", "soup", "curry", "rice bowl", "taco", "burrito", "sandwich"}

	for _, tag := range foodTags {
		lower := strings.ToLower(tag)
		for _, keyword := range snackKeywords {
			if strings.Contains(lower, keyword) {
				return "snack"
			}
		}
		for _, keyword := range mealKeywords {
			if strings.Contains(lower, keyword) {
				return "meal"
			}
		}
	}
	return "unknown"
}

// buildPrompt renders the ranking request: food context, meal type, and at
// most promptActivityLimit lines of viewing history.
func buildPrompt(foodTags []string, activity []youtube.Video) string {
	meal := mealType(foodTags)

	var activityLines []string
	for i, video := range activity {
		if i >= promptActivityLimit {
			break
		}
		activityLines = append(activityLines,
			fmt.Sprintf("- Title: %s, Channel: %s, Duration: %s", video.Title, video.ChannelTitle, video.Duration))
	}
	activitySummary := "User has no recent YouTube activity provided."
	if len(activityLines) > 0 {
		activitySummary = strings.Join(activityLines, "\n")
	}

	tags := "no specific food characteristics"
	if len(foodTags) > 0 {
		tags = strings.Join(foodTags, ", ")
	}

	return fmt.Sprintf(`You are SnackSync, a YouTube video recommendation assistant that suggests videos to watch while eating.

The user is eating food with these characteristics: %s.
They are having a '%s'. Please suggest videos of an appropriate length: typically shorter (under 15 mins) for a snack, and medium (15-45 mins) or longer (45+ mins) for a meal. If the meal type is 'unknown', use your best judgment.

Here's a summary of some of their recently liked YouTube videos:
%s

Based on the food, the meal context, and their viewing history, please recommend 1 to 3 YouTube videos.
For each recommendation, provide the YouTube Video ID, the video title, and a short 1-2 sentence reason explaining why this video is a good match, considering the food and their viewing vibe.

Output your recommendations ONLY as a valid JSON list of objects. Each object in the list should have the following keys: "video_id", "title", "reason".
Example: [{"video_id": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up", "reason": "This classic song is great for any meal!"}]
If you cannot find any suitable recommendations, return an empty JSON list [].`, tags, meal, activitySummary)
}

// parseRecommendations decodes the oracle's raw text. Anything that is not a
// JSON list of well-formed objects yields zero recommendations; the caller
// still gets a successful, empty result.
func parseRecommendations(raw string) []Recommendation {
	var recommendations []Recommendation
	if err := json.Unmarshal([]byte(raw), &recommendations); err != nil {
		log.WithError(err).Warn("Oracle response was not a JSON list of recommendations")
		return []Recommendation{}
	}
	if recommendations == nil {
		return []Recommendation{}
	}
	return recommendations
}
