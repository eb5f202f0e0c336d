package schema

// FieldKey names a canonical import field.
type FieldKey string

const (
	FieldFirstName        FieldKey = "first_name"
	FieldLastName         FieldKey = "last_name"
	FieldEmail            FieldKey = "email"
	FieldContactNumber    FieldKey = "contact_number"
	FieldAssignmentStatus FieldKey = "assignment_status"
	FieldAssignmentLevel  FieldKey = "assignment_level"
	FieldAssignmentName   FieldKey = "assignment_name"
	FieldPersonType       FieldKey = "person_type"
	FieldGender           FieldKey = "gender"
	FieldTitle            FieldKey = "title"
	FieldPositionDetail   FieldKey = "position_detail"
	FieldGroup            FieldKey = "group"
	FieldStartDate        FieldKey = "start_date"
	FieldEndDate          FieldKey = "end_date"
	FieldDuration         FieldKey = "duration"
	FieldStreetAddress    FieldKey = "street_address"
	FieldAddressCity      FieldKey = "address_city"
	FieldAddressState     FieldKey = "address_state"
	FieldZipCode          FieldKey = "zip_code"
	FieldHomeStake        FieldKey = "home_stake"
	FieldNotes            FieldKey = "notes"

	// FieldAssignmentCity is the optional column used to pick between
	// same-named communities in different cities.
	FieldAssignmentCity FieldKey = "assignment_city"

	// Legacy header set: separate City and Community columns instead of a
	// unified Assignment column. Legacy files carry a single City column, so
	// it auto-maps to both FieldLegacyCity and FieldAddressCity; SetMapping
	// splits them when a file has both.
	FieldLegacyCity      FieldKey = "city"
	FieldLegacyCommunity FieldKey = "community"
)

// FieldDef describes one canonical field.
type FieldDef struct {
	Key      FieldKey `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	// Aliases are further header spellings accepted by auto-matching.
	Aliases []string `json:"aliases,omitempty"`
	// SatisfiedBy lists fields whose mapping also satisfies this field's
	// required-mapping gate. Only Community satisfies Assignment: City is
	// also the address column of new-format files.
	SatisfiedBy []FieldKey `json:"satisfied_by,omitempty"`
}

// Fields is the import field catalogue in template column order.
var Fields = []FieldDef{
	{Key: FieldFirstName, Label: "First Name", Required: true},
	{Key: FieldLastName, Label: "Last Name", Required: true},
	{Key: FieldEmail, Label: "Email", Required: true, Aliases: []string{"Email Address", "E-mail"}},
	{Key: FieldContactNumber, Label: "Phone", Required: true, Aliases: []string{"Phone Number", "Mobile"}},
	{Key: FieldAssignmentStatus, Label: "Status", Required: true},
	{Key: FieldAssignmentLevel, Label: "Level", Required: true},
	{Key: FieldAssignmentName, Label: "Assignment", Required: true, SatisfiedBy: []FieldKey{FieldLegacyCommunity}},
	{Key: FieldPersonType, Label: "Type", Required: true},
	{Key: FieldGender, Label: "Gender"},
	{Key: FieldTitle, Label: "Position", Required: true},
	{Key: FieldPositionDetail, Label: "Position Detail"},
	{Key: FieldStartDate, Label: "Start Date"},
	{Key: FieldEndDate, Label: "End Date"},
	{Key: FieldDuration, Label: "Duration"},
	{Key: FieldGroup, Label: "Group"},
	{Key: FieldStreetAddress, Label: "Street Address", Required: true, Aliases: []string{"Address"}},
	{Key: FieldAddressCity, Label: "City", Required: true},
	{Key: FieldAddressState, Label: "State", Required: true},
	{Key: FieldZipCode, Label: "Zip Code", Required: true, Aliases: []string{"Zip", "Postal Code"}},
	{Key: FieldHomeStake, Label: "Home Stake", Aliases: []string{"Stake"}},
	{Key: FieldNotes, Label: "Notes"},
	{Key: FieldAssignmentCity, Label: "Assignment City"},
	{Key: FieldLegacyCity, Label: "City"},
	{Key: FieldLegacyCommunity, Label: "Community"},
}

// Lookup returns the definition of key.
func Lookup(key FieldKey) (FieldDef, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Label returns the human label of key, or the key itself when unknown.
func Label(key FieldKey) string {
	if f, ok := Lookup(key); ok {
		return f.Label
	}
	return string(key)
}

// TemplateHeader is the header row of the downloadable import template.
var TemplateHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "Status", "Level", "Assignment",
	"Type", "Gender", "Position", "Position Detail", "Start Date", "End Date",
	"Street Address", "City", "State", "Zip Code", "Home Stake", "Notes",
}
