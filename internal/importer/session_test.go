package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myhometown/missionary-import/internal/ingest"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/refdata"
	"github.com/myhometown/missionary-import/internal/schema"
)

const sessionCSV = "First Name,Last Name,Email,Phone,Status,Level,Assignment,Type,Position,Street Address,City,State,Zip Code\n" +
	"John,Doe,john@x.com,801-555-1234,active,city,Provo,missionary,City Chair,123 Main,Provo,UT,84601\n" +
	"Jane,Roe,jane@x.com,801-555-9999,active,community,Downtown,missionary,Member,9 Oak,Orem,UT,84057\n"

type stubSubmitter struct {
	got     []models.CanonicalRecord
	summary *models.ImportSummary
	err     error
}

func (s *stubSubmitter) Submit(_ context.Context, records []models.CanonicalRecord) (*models.ImportSummary, error) {
	s.got = records
	return s.summary, s.err
}

func sessionSource() refdata.Static {
	return refdata.Static{
		CityList: []models.City{{ID: "c1", Name: "Provo"}, {ID: "c2", Name: "Ogden"}, {ID: "c3", Name: "Orem"}},
		CommunityList: []models.Community{
			{ID: "m1", Name: "Downtown", CityID: "c2"},
			{ID: "m2", Name: "Downtown", CityID: "c3"},
		},
	}
}

type brokenSource struct{ refdata.Static }

func (brokenSource) Communities(context.Context) ([]models.Community, error) {
	return nil, errors.New("connection refused")
}

func TestSession_FullFlow(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(sessionCSV)))

	assert.NotEqual(t, "", s.ID.String())
	assert.Len(t, s.Table().Rows, 2)
	assert.Empty(t, s.MissingFields())

	result, err := s.Validate(context.Background(), sessionSource())
	require.NoError(t, err)
	require.Len(t, result.Valid, 1)
	assert.Equal(t, "john@x.com", result.Valid[0].Email)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 3: community 'Downtown' is ambiguous")

	sub := &stubSubmitter{summary: &models.ImportSummary{Success: 1}}
	summary, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Success)
	assert.Len(t, sub.got, 1)
	assert.Same(t, summary, s.Summary())
}

func TestSession_MappingOverride(t *testing.T) {
	csv := "fname,Last Name,Email,Phone,Status,Level,Assignment,Type,Position,Street Address,City,State,Zip Code\n" +
		"John,Doe,john@x.com,801,active,city,Provo,missionary,Chair,1 Main,Provo,UT,84601\n"
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(csv)))

	missing := s.MissingFields()
	require.Len(t, missing, 1)
	assert.Equal(t, schema.FieldFirstName, missing[0].Key)

	_, err := s.Validate(context.Background(), sessionSource())
	var missingErr *schema.MissingError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"First Name"}, missingErr.Labels())

	require.NoError(t, s.SetMapping(schema.FieldFirstName, "fname"))
	result, err := s.Validate(context.Background(), sessionSource())
	require.NoError(t, err)
	assert.Len(t, result.Valid, 1)
	assert.Equal(t, "John", result.Valid[0].FirstName)
}

func TestSession_SetMappingDiscardsResult(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(sessionCSV)))
	_, err := s.Validate(context.Background(), sessionSource())
	require.NoError(t, err)

	require.NoError(t, s.SetMapping(schema.FieldNotes, "State"))
	assert.Nil(t, s.Result())

	_, err = s.Submit(context.Background(), &stubSubmitter{})
	assert.ErrorIs(t, err, ErrNotValidated)

	assert.Error(t, s.SetMapping("nickname", "City"))
}

func TestSession_ReferenceFailureAborts(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(sessionCSV)))

	result, err := s.Validate(context.Background(), brokenSource{sessionSource()})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, s.Result())
}

func TestSession_EmptyFile(t *testing.T) {
	s := NewSession(nil)

	err := s.Load("empty.csv", strings.NewReader("First Name,Last Name\n"))

	assert.ErrorIs(t, err, ingest.ErrEmpty)
	assert.Nil(t, s.Table())
	_, err = s.Validate(context.Background(), sessionSource())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSession_NothingToSubmit(t *testing.T) {
	csv := "First Name,Last Name,Email,Phone,Status,Level,Assignment,Type,Position,Street Address,City,State,Zip Code\n" +
		"John,Doe,john@x.com,801,active,city,Logan,missionary,Chair,1 Main,Provo,UT,84601\n"
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(csv)))
	_, err := s.Validate(context.Background(), sessionSource())
	require.NoError(t, err)

	sub := &stubSubmitter{}
	_, err = s.Submit(context.Background(), sub)

	assert.ErrorIs(t, err, ErrNothingToSubmit)
	assert.Nil(t, sub.got)
}

func TestSession_SubmitErrorKeepsResult(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Load("people.csv", strings.NewReader(sessionCSV)))
	_, err := s.Validate(context.Background(), sessionSource())
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), &stubSubmitter{err: errors.New("status 500")})

	require.Error(t, err)
	assert.Nil(t, s.Summary())
	assert.NotNil(t, s.Result())
}
