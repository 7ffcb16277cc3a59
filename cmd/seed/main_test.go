package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRoomsFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"6f1c2b8e-4d0c-4a8e-9b1e-2f9c1a7d3e10","title":"Loft","description":"Bright loft","price":"4500","location":"Lisbon","image":"https://img.test/1.jpg"}]`))
	}))
	defer srv.Close()

	items, err := fetchRoomsFromAPI(srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Loft", items[0].Title)
}

func TestFetchRoomsFromAPI_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fetchRoomsFromAPI(srv.URL)
	assert.Error(t, err)
}

func TestToRooms(t *testing.T) {
	sellerID := uuid.New()
	items := []SeedRoomData{
		{ID: uuid.NewString(), Title: "Ok", Price: "120.456"},
		{ID: "nope", Title: "Bad id", Price: "10"},
		{ID: uuid.NewString(), Title: "Bad price", Price: "ten"},
		{ID: uuid.NewString(), Title: "Negative", Price: "-1"},
	}

	rooms, skipped := toRooms(items, sellerID)
	require.Len(t, rooms, 1)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, sellerID, rooms[0].SellerID)
	assert.Equal(t, "120.46", rooms[0].Price.StringFixed(2))
}
