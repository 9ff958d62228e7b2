package codeforces_test

import (
	"cf_tracker/internal/common"
	"cf_tracker/internal/platform/codeforces"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (codeforces.Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := codeforces.NewClient(server.URL, 2*time.Second, 2*time.Second)
	return client, server
}

func TestUserInfo(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user.info", r.URL.Path)
		assert.Equal(t, "tourist", r.URL.Query().Get("handles"))
		w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","rating":3858,"maxRating":4009}]}`))
	}))
	defer server.Close()

	info, err := client.UserInfo(context.Background(), "tourist")
	require.NoError(t, err)
	assert.Equal(t, "tourist", info.Handle)
	require.NotNil(t, info.Rating)
	assert.Equal(t, 3858, *info.Rating)
	require.NotNil(t, info.MaxRating)
	assert.Equal(t, 4009, *info.MaxRating)
}

func TestUserInfoUnratedOmitsRating(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":[{"handle":"newbie"}]}`))
	}))
	defer server.Close()

	info, err := client.UserInfo(context.Background(), "newbie")
	require.NoError(t, err)
	assert.Nil(t, info.Rating)
	assert.Nil(t, info.MaxRating)
}

func TestUserInfoFailedStatus(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nosuch not found"}`))
	}))
	defer server.Close()

	_, err := client.UserInfo(context.Background(), "nosuch")
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestUserInfoEmptyResult(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":[]}`))
	}))
	defer server.Close()

	_, err := client.UserInfo(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestUserRating(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user.rating", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("handle"))
		w.Write([]byte(`{"status":"OK","result":[
			{"contestId":1,"contestName":"Round 1","handle":"alice","rank":12,
			 "ratingUpdateTimeSeconds":1700000000,"oldRating":1500,"newRating":1620}
		]}`))
	}))
	defer server.Close()

	changes, err := client.UserRating(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 1, changes[0].ContestID)
	assert.Equal(t, 1500, changes[0].OldRating)
	assert.Equal(t, 1620, changes[0].NewRating)
}

func TestUserStatusPassesWindow(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user.status", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("handle"))
		assert.Equal(t, "1", r.URL.Query().Get("from"))
		assert.Equal(t, "1000", r.URL.Query().Get("count"))
		w.Write([]byte(`{"status":"OK","result":[
			{"id":301,"contestId":100,"creationTimeSeconds":1700000000,"relativeTimeSeconds":600,
			 "problem":{"contestId":100,"index":"A","name":"Watermelon","type":"PROGRAMMING","rating":800,"tags":["math"]},
			 "author":{"contestId":100,"members":[{"handle":"alice"}],"participantType":"CONTESTANT","ghost":false},
			 "programmingLanguage":"GNU C++17","verdict":"OK","testset":"TESTS","passedTestCount":42}
		]}`))
	}))
	defer server.Close()

	submissions, err := client.UserStatus(context.Background(), "alice", 1, 1000)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	sub := submissions[0]
	assert.EqualValues(t, 301, sub.ID)
	require.NotNil(t, sub.Problem)
	assert.Equal(t, "Watermelon", *sub.Problem.Name)
	require.NotNil(t, sub.Verdict)
	assert.Equal(t, "OK", *sub.Verdict)
}

func TestUserStatusSparseSubmission(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","result":[{"id":302,"creationTimeSeconds":1700000000}]}`))
	}))
	defer server.Close()

	submissions, err := client.UserStatus(context.Background(), "alice", 1, 1000)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	assert.Nil(t, submissions[0].Problem)
	assert.Nil(t, submissions[0].Verdict)
	assert.Nil(t, submissions[0].ContestID)
}

func TestTimeoutIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"OK","result":[]}`))
	}))
	defer server.Close()
	client := codeforces.NewClient(server.URL, 50*time.Millisecond, 50*time.Millisecond)

	_, err := client.UserRating(context.Background(), "slow")
	assert.ErrorIs(t, err, common.ErrUpstream)
}
