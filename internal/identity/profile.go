package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an entity identifier as the backend serializes it. Different backend
// versions emit numbers or strings for the same field, so unmarshaling
// accepts both and keeps the decimal string form.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is absent.
func (id ID) IsZero() bool { return id == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte(`""`), nil
	}
	// Preserve numeric form when the value parses as an integer so the
	// backend sees the type it sent.
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Profile is the user payload the login endpoint returns in its data field.
// It is the single persisted source of truth for the per-role entity IDs; the
// accessor methods replace the denormalized studentId/adminId/superAdminId
// copies older clients kept alongside it.
type Profile struct {
	StudentID       ID     `json:"studentId,omitempty"`
	AdministratorID ID     `json:"administratorId,omitempty"`
	SuperAdminID    ID     `json:"superAdminId,omitempty"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Department      string `json:"department,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

// IsZero reports whether the profile carries no identifying data.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// EntityID returns the identifier matching the given role.
func (p Profile) EntityID(role Role) ID {
	switch role {
	case RoleStudent:
		return p.StudentID
	case RoleAdmin:
		return p.AdministratorID
	case RoleSuperAdmin:
		return p.SuperAdminID
	default:
		return ""
	}
}
