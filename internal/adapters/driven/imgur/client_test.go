package imgur

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

const twoRecords = `{
	"data": [
		{"id": "abc", "title": "Album", "cover": "cov1", "is_album": true, "link": "https://imgur.com/a/abc"},
		{"id": "def", "title": "Single", "is_album": false}
	],
	"success": true,
	"status": 200
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL})
}

func TestClient_FetchPage_Success(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoRecords))
	})

	page, err := client.FetchPage(context.Background(), 2, "red cats",
		map[string]string{domain.AuthorizationHeader: "Client-ID abc123"})
	require.NoError(t, err)

	assert.Equal(t, "/3/gallery/search/2", gotPath)
	assert.Equal(t, "red cats", gotQuery)
	assert.Equal(t, "Client-ID abc123", gotAuth)

	require.Len(t, page, 2)
	assert.Equal(t, "abc", page[0].ID)
	assert.Equal(t, "cov1", page[0].CoverPath)
	assert.True(t, page[0].IsAlbum)
	assert.Equal(t, "Album", page[0].Title)
	// Single images use their own id as the cover.
	assert.Equal(t, "def", page[1].CoverPath)
	assert.Equal(t, "https://i.imgur.com/def.jpg", page[1].CoverURL(domain.DefaultImageBaseURL))
}

func TestClient_FetchPage_EmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [], "success": true, "status": 200}`))
	})

	page, err := client.FetchPage(context.Background(), 9, "cats", nil)
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestClient_FetchPage_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   domain.ErrorCode
		msg    string
	}{
		{400, `{"data": {"error": "Bad query"}, "success": false, "status": 400}`, domain.CodeBadRequest, "Bad query"},
		{401, `{"data": {"error": "Authentication required"}, "success": false, "status": 401}`, domain.CodeUnauthorized, "Authentication required"},
		{404, `{"data": {"error": {"message": "Not found", "code": 1}}, "success": false, "status": 404}`, domain.CodeNotFound, "Not found"},
		{500, `oops`, domain.CodeServerError, ""},
		{503, ``, domain.CodeServiceUnavailable, ""},
		{429, `{}`, domain.CodeUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchPage(context.Background(), 1, "cats", nil)
			var statusErr *domain.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.msg, statusErr.Message)
			assert.Equal(t, tt.want, domain.CodeForError(err))
		})
	}
}

func TestClient_FetchPage_UnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"error": "Over capacity"}, "success": false, "status": 503}`))
	})

	_, err := client.FetchPage(context.Background(), 1, "cats", nil)
	assert.Equal(t, domain.CodeServiceUnavailable, domain.CodeForError(err))
}

func TestClient_FetchPage_DecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": "not a list", "success": true}`))
	})

	_, err := client.FetchPage(context.Background(), 1, "cats", nil)
	assert.ErrorIs(t, err, domain.ErrDecode)
	assert.Equal(t, domain.CodeUnknown, domain.CodeForError(err))
}

func TestClient_FetchPage_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.FetchPage(context.Background(), 1, "cats", nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeUnknown, domain.CodeForError(err))
}

func TestClient_FetchPage_AccessTokenOverridesClientID(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(twoRecords))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL, AccessToken: "tok"})
	_, err := client.FetchPage(context.Background(), 1, "cats",
		map[string]string{domain.AuthorizationHeader: "Client-ID abc"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_FetchPage_QuotaSpentFailsFast(t *testing.T) {
	var hits atomic.Int32
	reset := time.Now().Add(time.Hour).Unix()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set(HeaderClientRemaining, "0")
		w.Header().Set(HeaderClientLimit, "12500")
		w.Header().Set(HeaderUserReset, strconv.FormatInt(reset, 10))
		_, _ = w.Write([]byte(twoRecords))
	})

	_, err := client.FetchPage(context.Background(), 1, "cats", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, client.RateLimiter().Remaining())

	_, err = client.FetchPage(context.Background(), 2, "cats", nil)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 12500, rlErr.Limit)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, domain.CodeUnknown, domain.CodeForError(err))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, domain.DefaultCatalogBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.http.Timeout)
	assert.Equal(t, -1, client.RateLimiter().Remaining())
}
