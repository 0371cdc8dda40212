package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"unimart/internal/identity"
)

// StudentAPI covers student records: the admin roster plus each student's
// own profile.
type StudentAPI struct {
	c *Client
}

type Student struct {
	ID          identity.ID `json:"studentId"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Department  string      `json:"department"`
	PhoneNumber string      `json:"phoneNumber"`
	AvatarURL   string      `json:"avatarUrl"`
}

// StudentUpdate carries the editable profile fields; all optional, with the
// avatar as a multipart file part when present.
type StudentUpdate struct {
	Name        string
	Department  string
	PhoneNumber string

	Avatar         io.Reader
	AvatarFilename string
}

// List fetches all registered students; the student-management table.
func (s *StudentAPI) List(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := s.c.doJSON(ctx, http.MethodGet, s.c.cfg.AuthBaseURL+"/student/getAll", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Get fetches one student record.
func (s *StudentAPI) Get(ctx context.Context, id identity.ID) (*Student, error) {
	var student Student
	url := fmt.Sprintf("%s/student/read/%s", s.c.cfg.AuthBaseURL, id)
	if err := s.c.doJSON(ctx, http.MethodGet, url, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update patches a student profile as multipart form data.
func (s *StudentAPI) Update(ctx context.Context, id identity.ID, update StudentUpdate) error {
	fields := map[string]string{}
	if update.Name != "" {
		fields["name"] = update.Name
	}
	if update.Department != "" {
		fields["department"] = update.Department
	}
	if update.PhoneNumber != "" {
		fields["phoneNumber"] = update.PhoneNumber
	}
	url := fmt.Sprintf("%s/student/update/%s", s.c.cfg.AuthBaseURL, id)
	return s.c.doMultipart(ctx, http.MethodPatch, url, fields, "avatar", update.AvatarFilename, update.Avatar, nil)
}

// Delete removes a student account; admin only.
func (s *StudentAPI) Delete(ctx context.Context, id identity.ID) error {
	url := fmt.Sprintf("%s/student/delete/%s", s.c.cfg.AuthBaseURL, id)
	return s.c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}
