package importer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myhometown/missionary-import/internal/ingest"
	"github.com/myhometown/missionary-import/internal/location"
	"github.com/myhometown/missionary-import/internal/models"
	"github.com/myhometown/missionary-import/internal/schema"
)

// Validator turns mapped CSV rows into canonical records, resolving
// assignment names against the reference index.
type Validator struct {
	index  *location.Index
	logger *slog.Logger
}

// NewValidator creates a validator over idx. A nil logger uses slog.Default.
func NewValidator(idx *location.Index, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{index: idx, logger: logger}
}

// Validate checks every row and returns the rows without errors as
// canonical records, together with all errors of all rows. Errors are
// prefixed with the row's line number in the file.
func (v *Validator) Validate(rows []ingest.RawRow, mapping schema.Mapping) models.ImportResult {
	result := models.ImportResult{
		Valid:  make([]models.CanonicalRecord, 0, len(rows)),
		Errors: make([]string, 0),
	}
	seenEmails := make(map[string]int)

	for i, row := range rows {
		rowNum := ingest.RowNumber(i)
		rec, errs, skipped := v.validateRow(row, rowNum, mapping, seenEmails)
		if skipped {
			continue
		}
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Valid = append(result.Valid, rec)
	}

	v.logger.Info("import rows validated",
		slog.Int("rows", len(rows)),
		slog.Int("valid", len(result.Valid)),
		slog.Int("errors", len(result.Errors)))

	return result
}

func (v *Validator) validateRow(
	row ingest.RawRow,
	rowNum int,
	mapping schema.Mapping,
	seenEmails map[string]int,
) (rec models.CanonicalRecord, errs []string, skipped bool) {
	get := func(key schema.FieldKey) string { return mapping.Value(row, key) }
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("Row %d: ", rowNum)+fmt.Sprintf(format, args...))
	}
	required := func(key schema.FieldKey) string {
		value := get(key)
		if value == "" {
			fail("%s is required", schema.Label(key))
		}
		return value
	}

	rec = models.CanonicalRecord{
		FirstName:      get(schema.FieldFirstName),
		LastName:       get(schema.FieldLastName),
		Email:          strings.ToLower(get(schema.FieldEmail)),
		Group:          get(schema.FieldGroup),
		PositionDetail: get(schema.FieldPositionDetail),
		HomeStake:      get(schema.FieldHomeStake),
		Notes:          get(schema.FieldNotes),
	}
	rawStatus := get(schema.FieldAssignmentStatus)

	if rec.FirstName == "" && rec.LastName == "" && rec.Email == "" && rawStatus == "" {
		return rec, nil, true
	}

	required(schema.FieldFirstName)
	required(schema.FieldLastName)
	required(schema.FieldEmail)
	rec.ContactNumber = required(schema.FieldContactNumber)

	if rec.Email != "" {
		if first, dup := seenEmails[rec.Email]; dup {
			fail("duplicate email '%s' in file (first used on row %d)", rec.Email, first)
		} else {
			seenEmails[rec.Email] = rowNum
		}
	}

	rec.PersonType = normalized(required(schema.FieldPersonType), schema.NormalizePersonType, fail)
	rec.AssignmentStatus = normalized(required(schema.FieldAssignmentStatus), schema.NormalizeStatus, fail)
	rec.AssignmentLevel = normalized(required(schema.FieldAssignmentLevel), schema.NormalizeLevel, fail)

	if gender, err := schema.NormalizeGender(get(schema.FieldGender)); err != nil {
		fail("%s", err.Error())
	} else {
		rec.Gender = gender
	}

	assignment := v.assignmentName(row, mapping, rec.AssignmentLevel)
	if assignment == "" {
		fail("%s is required", schema.Label(schema.FieldAssignmentName))
	}

	rec.Title = required(schema.FieldTitle)
	rec.StreetAddress = required(schema.FieldStreetAddress)
	rec.AddressCity = required(schema.FieldAddressCity)
	rec.AddressState = required(schema.FieldAddressState)
	rec.ZipCode = required(schema.FieldZipCode)

	if assignment != "" && rec.AssignmentLevel != "" {
		v.resolveLocation(&rec, row, rowNum, mapping, assignment, fail)
	}

	v.fillDates(&rec, get, fail)

	return rec, errs, false
}

// assignmentName reads the unified Assignment column, falling back to the
// legacy column that matches the level: Community for community rows, City
// for city rows and state rows, which name the state there.
func (v *Validator) assignmentName(row ingest.RawRow, mapping schema.Mapping, level string) string {
	if name := mapping.Value(row, schema.FieldAssignmentName); name != "" || !mapping.Legacy() {
		return name
	}
	switch level {
	case models.LevelCommunity:
		return mapping.Value(row, schema.FieldLegacyCommunity)
	case models.LevelCity, models.LevelState:
		return mapping.Value(row, schema.FieldLegacyCity)
	}
	return ""
}

func (v *Validator) resolveLocation(
	rec *models.CanonicalRecord,
	row ingest.RawRow,
	rowNum int,
	mapping schema.Mapping,
	assignment string,
	fail func(string, ...any),
) {
	switch rec.AssignmentLevel {
	case models.LevelState:
		if !strings.EqualFold(assignment, models.StateAssignmentName) {
			fail("state-level assignment must be '%s', got '%s'", models.StateAssignmentName, assignment)
		}

	case models.LevelCity:
		city, err := v.index.ResolveCity(assignment)
		if err != nil {
			fail("%s", err.Error())
			return
		}
		rec.CityID = &city.ID

	case models.LevelCommunity:
		inCity := mapping.Value(row, schema.FieldAssignmentCity)
		if inCity == "" && mapping.Legacy() {
			inCity = mapping.Value(row, schema.FieldLegacyCity)
		}

		res, err := v.index.ResolveCommunity(assignment, inCity)
		if err != nil {
			fail("%s", err.Error())
			return
		}
		if res.Fuzzy {
			v.logger.Info("community resolved by partial name match",
				slog.Int("row", rowNum),
				slog.String("requested", assignment),
				slog.String("community", res.Community.Name),
				slog.String("community_id", res.Community.ID))
		}
		communityID := res.Community.ID
		rec.CommunityID = &communityID
		if res.CityID != "" {
			cityID := res.CityID
			rec.CityID = &cityID
		}
	}
}

// fillDates normalizes the dates to ISO form and derives the duration when
// only the dates are given.
func (v *Validator) fillDates(rec *models.CanonicalRecord, get func(schema.FieldKey) string, fail func(string, ...any)) {
	rec.Duration = get(schema.FieldDuration)
	rawStart, rawEnd := get(schema.FieldStartDate), get(schema.FieldEndDate)

	start, startOK := parseDateField(schema.FieldStartDate, rawStart, fail)
	end, endOK := parseDateField(schema.FieldEndDate, rawEnd, fail)
	if startOK {
		rec.StartDate = start.Format("2006-01-02")
	}
	if endOK {
		rec.EndDate = end.Format("2006-01-02")
	}
	if !startOK || !endOK {
		return
	}

	if end.Before(start) {
		fail("%s is before %s", schema.Label(schema.FieldEndDate), schema.Label(schema.FieldStartDate))
		return
	}
	if rec.Duration == "" {
		rec.Duration = FormatMonths(MonthsBetween(start, end))
	}
}

func parseDateField(key schema.FieldKey, raw string, fail func(string, ...any)) (t time.Time, ok bool) {
	if raw == "" {
		return t, false
	}
	t, err := ParseDate(raw)
	if err != nil {
		fail("%s %s", schema.Label(key), err.Error())
		return t, false
	}
	return t, true
}

func normalized(value string, fn func(string) (string, error), fail func(string, ...any)) string {
	if value == "" {
		return ""
	}
	out, err := fn(value)
	if err != nil {
		fail("%s", err.Error())
	}
	return out
}

// Validate runs a Validator with the default logger.
func Validate(rows []ingest.RawRow, mapping schema.Mapping, idx *location.Index) models.ImportResult {
	return NewValidator(idx, nil).Validate(rows, mapping)
}
