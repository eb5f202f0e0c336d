package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Assignment levels.
const (
	LevelState     = "state"
	LevelCity      = "city"
	LevelCommunity = "community"
)

// Assignment statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Person types.
const (
	TypeMissionary = "missionary"
	TypeVolunteer  = "volunteer"
)

// StateAssignmentName is the only accepted assignment name for state-level records.
const StateAssignmentName = "Utah"

// City is a reference city.
// DB columns: id, name, state, created_at
type City struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// Community is a reference community. A community names its parent city
// either by id (CityID) or by name (City).
// DB columns: id, name, city_id, created_at
type Community struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	CityID string `json:"city_id,omitempty"`
	City   string `json:"city,omitempty"`
}

// CanonicalRecord is one validated, normalized import row. It is also the
// wire shape of an entry in the bulk endpoint request body.
type CanonicalRecord struct {
	FirstName        string  `json:"first_name" validate:"required"`
	LastName         string  `json:"last_name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	ContactNumber    string  `json:"contact_number" validate:"required"`
	AssignmentStatus string  `json:"assignment_status" validate:"required,oneof=active inactive pending"`
	AssignmentLevel  string  `json:"assignment_level" validate:"required,oneof=state city community"`
	PersonType       string  `json:"person_type" validate:"required,oneof=missionary volunteer"`
	Gender           string  `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	CityID           *string `json:"city_id" validate:"omitempty,uuid"`
	CommunityID      *string `json:"community_id" validate:"omitempty,uuid"`
	Group            string  `json:"group,omitempty"`
	Title            string  `json:"title" validate:"required"`
	PositionDetail   string  `json:"position_detail,omitempty"`
	StartDate        string  `json:"start_date,omitempty"`
	EndDate          string  `json:"end_date,omitempty"`
	Duration         string  `json:"duration,omitempty"`
	StreetAddress    string  `json:"street_address" validate:"required"`
	AddressCity      string  `json:"address_city" validate:"required"`
	AddressState     string  `json:"address_state" validate:"required"`
	ZipCode          string  `json:"zip_code" validate:"required"`
	HomeStake        string  `json:"home_stake,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

// FullName joins first and last name.
func (r CanonicalRecord) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	if r.FirstName == "" {
		return r.LastName
	}
	return r.FirstName + " " + r.LastName
}

// ImportResult is the output of row validation.
type ImportResult struct {
	Valid  []CanonicalRecord `json:"valid"`
	Errors []string          `json:"errors"`
}

// Duplicate identifies a record the backend already had.
type Duplicate struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Failure identifies a record the backend rejected.
type Failure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// ImportSummary reconciles a bulk submission outcome.
type ImportSummary struct {
	Success    int         `json:"success"`
	Duplicates []Duplicate `json:"duplicates"`
	Failed     []Failure   `json:"failed"`
}

// BulkRequest is the body of POST /api/database/missionaries/bulk.
type BulkRequest struct {
	Missionaries []CanonicalRecord `json:"missionaries"`
}

// BulkInvalid reports one rejected entry of a bulk request.
type BulkInvalid struct {
	Index  int      `json:"index"`
	Email  string   `json:"email,omitempty"`
	Errors []string `json:"errors"`
}

// BulkSummary holds bulk response counters.
type BulkSummary struct {
	Inserted int `json:"inserted"`
}

// BulkResponse is the response of POST /api/database/missionaries/bulk.
type BulkResponse struct {
	Summary    BulkSummary   `json:"summary"`
	Duplicates []Duplicate   `json:"duplicates"`
	Invalid    []BulkInvalid `json:"invalid"`
}

// Missionary is a persisted missionary or volunteer.
// DB columns: id, first_name, last_name, email, contact_number, assignment_status,
//
//	assignment_level, person_type, gender, city_id, community_id, "group", title,
//	position_detail, start_date, end_date, duration, street_address, address_city,
//	address_state, zip_code, home_stake, notes, import_batch_id, created_at, updated_at
type Missionary struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	ContactNumber    string     `json:"contact_number"`
	AssignmentStatus string     `json:"assignment_status"`
	AssignmentLevel  string     `json:"assignment_level"`
	PersonType       string     `json:"person_type"`
	Gender           string     `json:"gender,omitempty"`
	CityID           *uuid.UUID `json:"city_id"`
	CommunityID      *uuid.UUID `json:"community_id"`
	Group            string     `json:"group,omitempty"`
	Title            string     `json:"title"`
	PositionDetail   string     `json:"position_detail,omitempty"`
	StartDate        string     `json:"start_date,omitempty"`
	EndDate          string     `json:"end_date,omitempty"`
	Duration         string     `json:"duration,omitempty"`
	StreetAddress    string     `json:"street_address"`
	AddressCity      string     `json:"address_city"`
	AddressState     string     `json:"address_state"`
	ZipCode          string     `json:"zip_code"`
	HomeStake        string     `json:"home_stake,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ImportBatchID    *uuid.UUID `json:"import_batch_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HourTotals aggregates reported service hours for one missionary.
type HourTotals struct {
	MissionaryID uuid.UUID `json:"missionary_id"`
	TotalHours   float64   `json:"total_hours"`
	Entries      int       `json:"entries"`
}

// ImportBatch records one bulk submission and the response it produced.
// DB columns: id, submitted_by, record_count, inserted, duplicates, invalid,
//
//	idempotency_key, response, created_at
type ImportBatch struct {
	ID             uuid.UUID       `json:"id"`
	SubmittedBy    *uuid.UUID      `json:"submitted_by,omitempty"`
	RecordCount    int             `json:"record_count"`
	Inserted       int             `json:"inserted"`
	Duplicates     int             `json:"duplicates"`
	Invalid        int             `json:"invalid"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	Response       json.RawMessage `json:"response"`
	CreatedAt      time.Time       `json:"created_at"`
}
