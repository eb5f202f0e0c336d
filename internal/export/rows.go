package export

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/myhometown/missionary-import/internal/location"
	"github.com/myhometown/missionary-import/internal/models"
)

// Header is the export column order. It is a superset of the import
// template, so an exported file can be imported again unchanged; the hour
// columns are ignored on import.
var Header = []string{
	"First Name", "Last Name", "Email", "Phone", "Status", "Level", "Assignment",
	"Assignment City", "Type", "Gender", "Position", "Position Detail", "Group",
	"Start Date", "End Date", "Duration", "Street Address", "City", "State",
	"Zip Code", "Home Stake", "Notes", "Total Hours", "Hours Entries",
}

// Row is one exported missionary with names resolved for re-import.
type Row struct {
	Missionary     models.Missionary
	Assignment     string
	AssignmentCity string
	Hours          models.HourTotals
}

// BuildRows resolves each missionary's assignment ids to names through idx
// and attaches its hour totals. Missionaries without hours get zero totals.
func BuildRows(missionaries []models.Missionary, idx *location.Index, totals map[uuid.UUID]models.HourTotals) []Row {
	rows := make([]Row, 0, len(missionaries))
	for _, m := range missionaries {
		row := Row{Missionary: m, Hours: totals[m.ID]}
		row.Hours.MissionaryID = m.ID

		cityName := ""
		if m.CityID != nil {
			cityName = idx.CityName(m.CityID.String())
		}

		switch m.AssignmentLevel {
		case models.LevelState:
			row.Assignment = models.StateAssignmentName
		case models.LevelCity:
			row.Assignment = cityName
		case models.LevelCommunity:
			if m.CommunityID != nil {
				row.Assignment = idx.CommunityName(m.CommunityID.String())
			}
			row.AssignmentCity = cityName
		}
		rows = append(rows, row)
	}
	return rows
}

// Cells renders r in Header order.
func (r Row) Cells() []string {
	m := r.Missionary
	return []string{
		m.FirstName, m.LastName, m.Email, m.ContactNumber, m.AssignmentStatus,
		m.AssignmentLevel, r.Assignment, r.AssignmentCity, m.PersonType, m.Gender,
		m.Title, m.PositionDetail, m.Group, m.StartDate, m.EndDate, m.Duration,
		m.StreetAddress, m.AddressCity, m.AddressState, m.ZipCode, m.HomeStake,
		m.Notes, formatHours(r.Hours.TotalHours), strconv.Itoa(r.Hours.Entries),
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
