package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/myhometown/missionary-import/internal/export"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
)

func get(t *testing.T, h func(r *httptest.ResponseRecorder, req *http.Request), path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func databaseServer(reference refdata.Source, missionaries MissionaryStore) func(*httptest.ResponseRecorder, *http.Request) {
	r := testRouter()
	h := NewDatabaseHandler(reference, missionaries)
	r.GET("/cities", h.HandleCities)
	r.GET("/communities", h.HandleCommunities)
	r.GET("/missionaries", h.HandleMissionaries)
	return func(w *httptest.ResponseRecorder, req *http.Request) { r.ServeHTTP(w, req) }
}

func TestDatabaseHandler_Reference(t *testing.T) {
	serve := databaseServer(testReference(), newFakeMissionaries())

	w := get(t, serve, "/cities")
	require.Equal(t, http.StatusOK, w.Code)
	var cities struct {
		Status string        `json:"status"`
		Data   []models.City `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Equal(t, "success", cities.Status)
	assert.Len(t, cities.Data, 3)

	w = get(t, serve, "/communities")
	require.Equal(t, http.StatusOK, w.Code)
	var communities struct {
		Data []models.Community `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &communities))
	require.Len(t, communities.Data, 2)
	assert.Equal(t, ogdenID, communities.Data[0].CityID)
}

func TestDatabaseHandler_EmptyListsAreArrays(t *testing.T) {
	serve := databaseServer(refdata.Static{}, newFakeMissionaries())

	for _, path := range []string{"/cities", "/communities", "/missionaries"} {
		w := get(t, serve, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"data":[]`, path)
	}
}

func TestDatabaseHandler_Failures(t *testing.T) {
	missionaries := newFakeMissionaries()
	missionaries.err = errStoreFailed
	serve := databaseServer(failingReference{}, missionaries)

	assert.Equal(t, http.StatusInternalServerError, get(t, serve, "/cities").Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, serve, "/missionaries").Code)
}

func exportServer(missionaries []models.Missionary, totals map[uuid.UUID]models.HourTotals) func(*httptest.ResponseRecorder, *http.Request) {
	r := testRouter()
	store := newFakeMissionaries()
	store.listed = missionaries
	h := NewExportHandler(testReference(), store, fakeHours{totals: totals})
	r.GET("/export", h.HandleExport)
	return func(w *httptest.ResponseRecorder, req *http.Request) { r.ServeHTTP(w, req) }
}

func exportFixture() ([]models.Missionary, map[uuid.UUID]models.HourTotals) {
	provo := uuid.MustParse(provoID)
	orem := uuid.MustParse(oremID)
	community := uuid.MustParse(downtownOrem)

	john := models.Missionary{
		ID: uuid.New(), FirstName: "John", LastName: "Doe", Email: "john@example.org",
		ContactNumber: "801-555-1234", AssignmentStatus: models.StatusActive,
		AssignmentLevel: models.LevelCity, PersonType: models.TypeMissionary, CityID: &provo,
		Title: "City Chair", StreetAddress: "123 Main", AddressCity: "Provo",
		AddressState: "UT", ZipCode: "84601", Duration: "6 months",
	}
	jane := models.Missionary{
		ID: uuid.New(), FirstName: "Jane", LastName: "Roe", Email: "jane@example.org",
		ContactNumber: "801-555-9999", AssignmentStatus: models.StatusActive,
		AssignmentLevel: models.LevelCommunity, PersonType: models.TypeVolunteer,
		CityID: &orem, CommunityID: &community, Title: "Member",
		StreetAddress: "9 Oak", AddressCity: "Orem", AddressState: "UT", ZipCode: "84057",
	}
	totals := map[uuid.UUID]models.HourTotals{
		john.ID: {MissionaryID: john.ID, TotalHours: 12.5, Entries: 3},
	}
	return []models.Missionary{john, jane}, totals
}

func TestHandleExport_CSV(t *testing.T) {
	serve := exportServer(exportFixture())

	w := get(t, serve, "/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, export.Header, records[0])

	john := map[string]string{}
	jane := map[string]string{}
	for i, h := range records[0] {
		john[h] = records[1][i]
		jane[h] = records[2][i]
	}
	assert.Equal(t, "Provo", john["Assignment"])
	assert.Equal(t, "12.5", john["Total Hours"])
	assert.Equal(t, "3", john["Hours Entries"])
	assert.Equal(t, "Downtown", jane["Assignment"])
	assert.Equal(t, "Orem", jane["Assignment City"])
	assert.Equal(t, "0", jane["Total Hours"])
}

func TestHandleExport_XLSX(t *testing.T) {
	serve := exportServer(exportFixture())

	w := get(t, serve, "/export?format=xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.Header, rows[0])
}

func TestHandleExport_Empty(t *testing.T) {
	serve := exportServer(nil, nil)

	w := get(t, serve, "/export")
	require.Equal(t, http.StatusOK, w.Code)
	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
