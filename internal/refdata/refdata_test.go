package refdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myhometown/missionary-import/internal/models"
)

type failingSource struct {
	Static
	citiesErr      error
	communitiesErr error
}

func (f failingSource) Cities(ctx context.Context) ([]models.City, error) {
	if f.citiesErr != nil {
		return nil, f.citiesErr
	}
	return f.Static.Cities(ctx)
}

func (f failingSource) Communities(ctx context.Context) ([]models.Community, error) {
	if f.communitiesErr != nil {
		return nil, f.communitiesErr
	}
	return f.Static.Communities(ctx)
}

func TestLoad_Static(t *testing.T) {
	src := Static{
		CityList:      []models.City{{ID: "c1", Name: "Provo"}},
		CommunityList: []models.Community{{ID: "m1", Name: "Downtown", CityID: "c1"}},
	}

	idx, err := Load(context.Background(), src)

	require.NoError(t, err)
	city, err := idx.ResolveCity("Provo")
	require.NoError(t, err)
	assert.Equal(t, "c1", city.ID)
	assert.Len(t, idx.Communities(), 1)
}

func TestLoad_EitherFailureAborts(t *testing.T) {
	boom := errors.New("boom")

	_, err := Load(context.Background(), failingSource{citiesErr: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to load reference data")
	assert.Contains(t, err.Error(), "cities")

	_, err = Load(context.Background(), failingSource{communitiesErr: boom})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "communities")
}

func TestClient_FetchesEnvelopeData(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/database/cities":
			_, _ = w.Write([]byte(`{"status":"success","data":[{"id":"c1","name":"Provo"}]}`))
		case "/api/database/communities":
			_, _ = w.Write([]byte(`{"status":"success","data":[{"id":"m1","name":"Downtown","city_id":"c1"}]}`))
		case "/api/database/missionaries":
			_, _ = w.Write([]byte(`{"status":"success","data":[{"id":"8d0f5a2c-3b1e-4c6a-9f7d-1e2a3b4c5d6e","first_name":"John","email":"john@x.com"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "tok", 5*time.Second)

	idx, err := Load(context.Background(), client)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	res, err := idx.ResolveCommunity("Downtown", "")
	require.NoError(t, err)
	assert.Equal(t, "c1", res.CityID)

	missionaries, err := client.Missionaries(context.Background())
	require.NoError(t, err)
	require.Len(t, missionaries, 1)
	assert.Equal(t, "john@x.com", missionaries[0].Email)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","error":{"code":"UNAUTHORIZED","message":"invalid token"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Cities(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid token")
}
