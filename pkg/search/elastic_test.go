package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES answers just enough of the Elasticsearch REST API for the client.
type fakeES struct {
	mu       sync.Mutex
	indexed  map[string]string
	lastBody string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"name":"fake","cluster_name":"test","version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		id := strings.TrimPrefix(r.URL.Path, "/products/_doc/")
		f.indexed[id] = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created","_id":"`+id+`"}`)
	case r.URL.Path == "/products/_search":
		f.lastBody = string(body)
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2},"hits":[{"_id":"7"},{"_id":"oops"},{"_id":"3"}]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}
}

func newElastic(t *testing.T) (*fakeES, *Elastic) {
	t.Helper()
	fake := &fakeES{indexed: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := NewElastic(Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return fake, es
}

func TestElastic_IndexProduct(t *testing.T) {
	fake, es := newElastic(t)

	require.NoError(t, es.IndexProduct(context.Background(), Document{ID: 7, Name: "Oat Milk", Price: 4}))

	raw, ok := fake.indexed["7"]
	require.True(t, ok)
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, Document{ID: 7, Name: "Oat Milk", Price: 4}, doc)
}

func TestElastic_SearchReturnsIDsInOrder(t *testing.T) {
	fake, es := newElastic(t)

	ids, err := es.Search(context.Background(), "milk", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, ids)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.lastBody), &sent))
	assert.EqualValues(t, 20, sent["size"])
	assert.EqualValues(t, 0, sent["from"])
}
