package anilist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(
		WithAPIURL(url),
		WithRateLimit(1000),
		WithRetry(2, time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestGetMediaByID_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(21), req.Variables["id"])
		assert.Equal(t, "ANIME", req.Variables["type"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"Media":{"id":21,"type":"ANIME","title":{"romaji":"One Piece","native":"ワンピース"},"description":"<b>Pirates</b> &amp; treasure","episodes":1100,"duration":24,"coverImage":{"large":"https://img/l.jpg"}}}}`))
	}))
	defer srv.Close()

	media, err := testClient(srv.URL).GetMediaByID(context.Background(), 21, MediaTypeAnime)
	require.NoError(t, err)

	meta := ExtractMetadata(*media)
	assert.Equal(t, 21, meta.AniListID)
	assert.Equal(t, "ワンピース", meta.TitleNative)
	assert.Equal(t, "Pirates & treasure", meta.Description)
	require.NotNil(t, meta.EpisodeDuration)
	assert.Equal(t, 24.0, *meta.EpisodeDuration)
	assert.Equal(t, "https://img/l.jpg", meta.CoverURL)
}

func TestGetMediaByID_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"Media":{"id":1,"type":"MANGA","title":{},"chapters":10}}}`))
	}))
	defer srv.Close()

	media, err := testClient(srv.URL).GetMediaByID(context.Background(), 1, MediaTypeManga)
	require.NoError(t, err)
	assert.Equal(t, 10, *media.Chapters)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetMediaByID_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetMediaByID(context.Background(), 1, MediaTypeAnime)
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetMediaByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"data":{"Media":null},"errors":[{"message":"Not Found.","status":404}]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetMediaByID(context.Background(), 999, MediaTypeAnime)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestGetMediaByID_GraphQLErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad query"}]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetMediaByID(context.Background(), 1, MediaTypeAnime)
	assert.ErrorContains(t, err, "bad query")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExtractMetadata_ZeroDurationIsUnknown(t *testing.T) {
	zero := 0
	meta := ExtractMetadata(MediaData{ID: 5, Duration: &zero})
	assert.Nil(t, meta.EpisodeDuration)
}
