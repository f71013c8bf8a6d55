package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/graphqlapi"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *GraphQLBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGraphQLBackend(graphqlapi.NewClient(server.URL))
}

func TestGraphQLBackend_ListByCategory(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SavedPlaces", req["operationName"])
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"savedPlaces":[
			{"id":"s1","placeId":"p1","placeName":"Cafe","latitude":"37.5","longitude":127.0},
			{"id":"s2","placeName":"No coords","latitude":null}
		]}}`))
	})

	places, err := backend.ListByCategory(context.Background(), "tok", "cat-1")
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "p1", places[0].PlaceID)
	assert.Equal(t, "37.5", places[0].Latitude.Raw)
	assert.Equal(t, "127.0", places[0].Longitude.Raw)
	assert.False(t, places[1].Latitude.Present)
}

func TestGraphQLBackend_ListByCategory_RequiresCategory(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be called")
	})
	_, err := backend.ListByCategory(context.Background(), "", " ")
	assert.Error(t, err)
}

func TestGraphQLBackend_Translate(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"translate":["Seoul","Restaurant"]}}`))
	})

	out, err := backend.Translate(context.Background(), []string{"서울", "음식점"}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Seoul", "Restaurant"}, out)
}

func TestGraphQLBackend_Translate_CountMismatch(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"translate":["Seoul"]}}`))
	})

	_, err := backend.Translate(context.Background(), []string{"서울", "음식점"}, "en")
	assert.Error(t, err)
}

func TestGraphQLBackend_Translate_EmptyInput(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be called")
	})
	out, err := backend.Translate(context.Background(), nil, "en")
	require.NoError(t, err)
	assert.Nil(t, out)
}
