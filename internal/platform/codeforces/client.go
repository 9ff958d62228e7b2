package codeforces

import (
	"cf_tracker/internal/common"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client issues the three read-only Codeforces API calls the sync pipeline
// needs. Every response carries a {status, comment, result} envelope; any
// status other than "OK" is a failure for that call.
type Client interface {
	UserInfo(ctx context.Context, handle string) (*UserInfo, error)
	UserRating(ctx context.Context, handle string) ([]RatingChange, error)
	UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error)
}

// UserInfo is the subset of user.info the pipeline consumes. Rating fields are
// pointers: unrated accounts omit them.
type UserInfo struct {
	Handle    string `json:"handle"`
	Rating    *int   `json:"rating"`
	MaxRating *int   `json:"maxRating"`
}

type RatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

// Problem and Author mirror the nested descriptors of user.status entries.
// Optional upstream fields stay pointers so the normalizer can default them.
type Problem struct {
	ContestID *int     `json:"contestId"`
	Index     *string  `json:"index"`
	Name      *string  `json:"name"`
	Type      *string  `json:"type"`
	Points    *float64 `json:"points"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

type Member struct {
	Handle *string `json:"handle"`
}

type Author struct {
	ContestID        *int     `json:"contestId"`
	Members          []Member `json:"members"`
	ParticipantType  *string  `json:"participantType"`
	Ghost            *bool    `json:"ghost"`
	Room             *int     `json:"room"`
	StartTimeSeconds *int64   `json:"startTimeSeconds"`
}

type Submission struct {
	ID                  int64    `json:"id"`
	ContestID           *int     `json:"contestId"`
	CreationTimeSeconds int64    `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64    `json:"relativeTimeSeconds"`
	Problem             *Problem `json:"problem"`
	Author              *Author  `json:"author"`
	ProgrammingLanguage *string  `json:"programmingLanguage"`
	Verdict             *string  `json:"verdict"`
	Testset             *string  `json:"testset"`
	PassedTestCount     *int     `json:"passedTestCount"`
	TimeConsumedMillis  *int     `json:"timeConsumedMillis"`
	MemoryConsumedBytes *int64   `json:"memoryConsumedBytes"`
}

type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type httpClient struct {
	baseURL string
	// The submission payload is much larger than the profile one, so it gets
	// a longer deadline.
	profileClient    http.Client
	submissionClient http.Client
}

func NewClient(baseURL string, profileTimeout, submissionTimeout time.Duration) Client {
	return &httpClient{
		baseURL:          baseURL,
		profileClient:    http.Client{Timeout: profileTimeout},
		submissionClient: http.Client{Timeout: submissionTimeout},
	}
}

func (c *httpClient) UserInfo(ctx context.Context, handle string) (*UserInfo, error) {
	params := url.Values{"handles": {handle}}
	var users []UserInfo
	if err := c.get(ctx, &c.profileClient, "user.info", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no user found for handle %q: %w", handle, common.ErrUpstream)
	}
	return &users[0], nil
}

func (c *httpClient) UserRating(ctx context.Context, handle string) ([]RatingChange, error) {
	params := url.Values{"handle": {handle}}
	var changes []RatingChange
	if err := c.get(ctx, &c.profileClient, "user.rating", params, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

func (c *httpClient) UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error) {
	params := url.Values{
		"handle": {handle},
		"from":   {strconv.Itoa(from)},
		"count":  {strconv.Itoa(count)},
	}
	var submissions []Submission
	if err := c.get(ctx, &c.submissionClient, "user.status", params, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (c *httpClient) get(ctx context.Context, client *http.Client, method string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + "/" + method + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("codeforces %s: %w", method, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("codeforces %s: %v: %w", method, err, common.ErrUpstream)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("codeforces %s: decoding response: %v: %w", method, err, common.ErrUpstream)
	}
	if resp.StatusCode != http.StatusOK || env.Status != "OK" {
		return fmt.Errorf("codeforces %s: status %d, api status %q (%s): %w",
			method, resp.StatusCode, env.Status, env.Comment, common.ErrUpstream)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("codeforces %s: decoding result: %v: %w", method, err, common.ErrUpstream)
	}
	return nil
}
