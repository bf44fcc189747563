package navapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninav/wayfinder/pkg/core"
)

func TestClient_BaseURL_TrimsTrailingSlash(t *testing.T) {
	c := New("http://nav.example.edu/", "")
	assert.Equal(t, "http://nav.example.edu", c.BaseURL())
}

func TestClient_Healthcheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthcheck", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, "")
	assert.NoError(t, c.Healthcheck())
}

func TestClient_Healthcheck_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL, "")
	assert.Error(t, c.Healthcheck())
}

func TestClient_Authorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]core.Floor{})
	}))
	defer server.Close()

	c := New(server.URL, "secret")
	_, err := c.GetFloors()
	assert.NoError(t, err)
}

func TestClient_NoAuthorizationWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]core.Floor{})
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.GetFloors()
	assert.NoError(t, err)
}

func TestClient_FindPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/path/find", r.URL.Path)

		var req PathRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "k1", req.FromKioskID)
		assert.Equal(t, "r42", req.ToRoomID)

		json.NewEncoder(w).Encode(core.Route{
			Path: []core.PathStep{
				{FloorID: "f1", X: 0, Y: 0},
				{FloorID: "f1", X: 10, Y: 0},
			},
			TotalDistance: 10,
		})
	}))
	defer server.Close()

	c := New(server.URL, "")
	route, err := c.FindPath(PathRequest{FromKioskID: "k1", ToRoomID: "r42"})
	require.NoError(t, err)
	assert.Len(t, route.Path, 2)
	assert.Equal(t, 10.0, route.TotalDistance)
}

func TestClient_FindPath_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "no_route",
			"message": "no path exists",
		})
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.FindPath(PathRequest{FromKioskID: "k1", ToRoomID: "r42"})

	var noRoute *NoRouteError
	require.ErrorAs(t, err, &noRoute)
	assert.Equal(t, "k1", noRoute.From)
	assert.Equal(t, "r42", noRoute.To)
	assert.Equal(t, "no route from k1 to r42", noRoute.Error())
}

func TestClient_FindPath_PlainNotFoundIsNotNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := New(server.URL, "")
	_, err := c.FindPath(PathRequest{ToRoomID: "r42"})

	var noRoute *NoRouteError
	assert.False(t, errors.As(err, &noRoute))
	assert.Error(t, err)
}

func TestClient_GetWaypointsByFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/floors/f3/waypoints", r.URL.Path)
		json.NewEncoder(w).Encode([]core.Waypoint{{ID: "w1", FloorID: "f3"}})
	}))
	defer server.Close()

	c := New(server.URL, "")
	waypoints, err := c.GetWaypointsByFloor("f3")
	require.NoError(t, err)
	require.Len(t, waypoints, 1)
	assert.Equal(t, "w1", waypoints[0].ID)
}

func TestClient_GetKiosk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/kiosks/k7", r.URL.Path)
		json.NewEncoder(w).Encode(core.Kiosk{ID: "k7", FloorID: "f1"})
	}))
	defer server.Close()

	c := New(server.URL, "")
	kiosk, err := c.GetKiosk("k7")
	require.NoError(t, err)
	assert.Equal(t, "k7", kiosk.ID)
}

func TestPathRequest_From(t *testing.T) {
	assert.Equal(t, "r1", PathRequest{FromRoomID: "r1", FromKioskID: "k1"}.From())
	assert.Equal(t, "w1", PathRequest{FromWaypointID: "w1", FromKioskID: "k1"}.From())
	assert.Equal(t, "k1", PathRequest{FromKioskID: "k1"}.From())
}
