package cms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	server   *httptest.Server
	searches []map[string][]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"refs": []map[string]any{
				{"id": "release", "ref": "release-ref", "isMasterRef": false},
				{"id": "master", "ref": "master-ref", "isMasterRef": true},
			},
		})
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f.searches = append(f.searches, q)

		if q.Get("page") == "2" {
			json.NewEncoder(w).Encode(map[string]any{
				"page":      2,
				"next_page": nil,
				"results": []map[string]any{
					{"id": "b", "uid": "second", "type": "posts", "data": map[string]any{"title": "Second"}},
				},
			})
			return
		}
		if q.Get("q") == `[[at(my.posts.uid, "missing")]]` {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			return
		}
		if q.Get("q") == `[[at(document.id, "broken")]]` {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
			return
		}

		next := f.server.URL + "/api/v2/documents/search?page=2&ref=" + q.Get("ref")
		json.NewEncoder(w).Encode(map[string]any{
			"page":      1,
			"next_page": next,
			"results": []map[string]any{
				{
					"id":                     "a",
					"uid":                    "first",
					"type":                   "posts",
					"first_publication_date": "2021-03-15T19:25:28+0000",
					"data":                   map[string]any{"title": "First"},
				},
			},
		})
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, token string) *Client {
	t.Helper()
	client, err := New(Config{
		Endpoint:    f.server.URL + "/api/v2",
		AccessToken: token,
		HTTPClient:  f.server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewRejectsMissingEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = New(Config{Endpoint: "/relative/api"})
	assert.Error(t, err)
}

func TestMasterRefPicksMaster(t *testing.T) {
	api := newFakeAPI(t)
	ref, err := api.client(t, "").MasterRef(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "master-ref", ref)
}

func TestQueryEncodesOptions(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(t, "secret")

	resp, err := client.Query(context.Background(), []Predicate{DocumentType("posts")}, QueryOptions{
		PageSize:  1,
		Orderings: []Ordering{FirstPublished(true)},
		After:     "doc-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "first", resp.Results[0].UID)
	require.NotNil(t, resp.Results[0].FirstPublicationDate)
	require.NotNil(t, resp.NextPage)

	require.Len(t, api.searches, 1)
	q := api.searches[0]
	assert.Equal(t, "master-ref", q["ref"][0])
	assert.Equal(t, `[[at(document.type, "posts")]]`, q["q"][0])
	assert.Equal(t, "1", q["pageSize"][0])
	assert.Equal(t, "[document.first_publication_date desc]", q["orderings"][0])
	assert.Equal(t, "doc-1", q["after"][0])
	assert.Equal(t, "secret", q["access_token"][0])
}

func TestQueryUsesGivenRef(t *testing.T) {
	api := newFakeAPI(t)
	_, err := api.client(t, "").Query(context.Background(), []Predicate{DocumentType("posts")}, QueryOptions{Ref: "preview-ref"})
	require.NoError(t, err)
	require.Len(t, api.searches, 1)
	assert.Equal(t, "preview-ref", api.searches[0]["ref"][0])
}

func TestQueryFollowsCursor(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(t, "secret")

	first, err := client.Query(context.Background(), []Predicate{DocumentType("posts")}, QueryOptions{PageSize: 1})
	require.NoError(t, err)
	require.NotNil(t, first.NextPage)

	second, err := client.Query(context.Background(), nil, QueryOptions{PageCursor: *first.NextPage})
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "second", second.Results[0].UID)
	assert.Nil(t, second.NextPage)

	last := api.searches[len(api.searches)-1]
	assert.Equal(t, "secret", last["access_token"][0])
}

func TestQueryRejectsForeignCursor(t *testing.T) {
	api := newFakeAPI(t)
	_, err := api.client(t, "").Query(context.Background(), nil, QueryOptions{
		PageCursor: "https://evil.example.com/api/v2/documents/search?page=2",
	})
	assert.ErrorIs(t, err, ErrForeignCursor)
	assert.Empty(t, api.searches)
}

func TestGetByUID(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(t, "")

	doc, err := client.GetByUID(context.Background(), "posts", "first", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a", doc.ID)

	_, err = client.GetByUID(context.Background(), "posts", "missing", QueryOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNon2xxIsAPIError(t *testing.T) {
	api := newFakeAPI(t)
	_, _, err := api.client(t, "").PreviewSession(context.Background(), "token", "broken")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Body, "upstream down")
}

func TestPreviewSessionRequiresTokenAndDocument(t *testing.T) {
	api := newFakeAPI(t)
	_, _, err := api.client(t, "").PreviewSession(context.Background(), "", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAtQuotesValue(t *testing.T) {
	assert.Equal(t, Predicate(`[at(my.posts.uid, "say \"hi\"")]`), At("my.posts.uid", `say "hi"`))
}
