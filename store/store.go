// Package store persists template projects as plain documents on the
// filesystem.
//
// The layout under the store directory is a lightweight project list plus
// one folder per project holding its heavyweight data:
//
//	projects.json                  project metadata list
//	projects/<id>/config.json      template configuration (nodes + fields)
//	projects/<id>/data.json        data rows
//	projects/<id>/<pdf filename>   template PDF bytes
//
// The engine treats these as opaque documents; all failures surface as
// *StorageError.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lmoreno/stampgen"
)

// ErrProjectNotFound indicates the requested project is not in the list.
var ErrProjectNotFound = errors.New("store: project not found")

// StorageError represents a failed document-store operation.
type StorageError struct {
	Op      string // operation name, e.g. "LoadTemplateConfig"
	Project string // project id, if any
	Err     error
}

func (e *StorageError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("store.%s: project %s: %v", e.Op, e.Project, e.Err)
	}
	return fmt.Sprintf("store.%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Project is the lightweight metadata kept in the project list.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PDFFileName string    `json:"pdf_file_name,omitempty"`
}

// projectList is the persisted form of projects.json.
type projectList struct {
	Projects    []Project `json:"projects"`
	LastUpdated time.Time `json:"last_updated"`
}

// rowDocument is the persisted form of data.json.
type rowDocument struct {
	Data []stampgen.DataRow `json:"data"`
}

// Store is a filesystem-backed project document store.
type Store struct {
	dir string
}

// Open initializes a store rooted at dir, creating the directory layout and
// an empty project list if they do not exist.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := os.MkdirAll(s.projectsDir(), 0o755); err != nil {
		return nil, &StorageError{Op: "Open", Err: err}
	}
	if _, err := os.Stat(s.listPath()); errors.Is(err, os.ErrNotExist) {
		if err := s.saveList(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, &StorageError{Op: "Open", Err: err}
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) listPath() string    { return filepath.Join(s.dir, "projects.json") }
func (s *Store) projectsDir() string { return filepath.Join(s.dir, "projects") }

// ProjectDir returns the folder holding a project's documents.
func (s *Store) ProjectDir(projectID string) string {
	return filepath.Join(s.projectsDir(), projectID)
}

// Projects returns the project metadata list.
func (s *Store) Projects() ([]Project, error) {
	data, err := os.ReadFile(s.listPath())
	if err != nil {
		return nil, &StorageError{Op: "Projects", Err: err}
	}
	var list projectList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &StorageError{Op: "Projects", Err: err}
	}
	return list.Projects, nil
}

// Project returns the metadata for one project.
func (s *Store) Project(projectID string) (Project, error) {
	projects, err := s.Projects()
	if err != nil {
		return Project{}, err
	}
	for _, p := range projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return Project{}, &StorageError{Op: "Project", Project: projectID, Err: ErrProjectNotFound}
}

// AddProject appends a project to the list and creates its folder. A zero
// CreatedAt is filled with the current time.
func (s *Store) AddProject(p Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	projects, err := s.Projects()
	if err != nil {
		return err
	}
	for _, existing := range projects {
		if existing.ID == p.ID {
			return &StorageError{Op: "AddProject", Project: p.ID, Err: errors.New("store: project id already exists")}
		}
	}
	if err := os.MkdirAll(s.ProjectDir(p.ID), 0o755); err != nil {
		return &StorageError{Op: "AddProject", Project: p.ID, Err: err}
	}
	return s.saveList(append(projects, p))
}

// UpdateProject replaces the metadata entry with the same ID.
func (s *Store) UpdateProject(p Project) error {
	projects, err := s.Projects()
	if err != nil {
		return err
	}
	for i, existing := range projects {
		if existing.ID == p.ID {
			projects[i] = p
			return s.saveList(projects)
		}
	}
	return &StorageError{Op: "UpdateProject", Project: p.ID, Err: ErrProjectNotFound}
}

// DeleteProject removes the project from the list and deletes its folder
// with everything in it.
func (s *Store) DeleteProject(projectID string) error {
	projects, err := s.Projects()
	if err != nil {
		return err
	}
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	if err := s.saveList(kept); err != nil {
		return err
	}
	if err := os.RemoveAll(s.ProjectDir(projectID)); err != nil {
		return &StorageError{Op: "DeleteProject", Project: projectID, Err: err}
	}
	return nil
}

// SaveTemplateConfig persists the template configuration document.
func (s *Store) SaveTemplateConfig(projectID string, t *stampgen.Template) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return &StorageError{Op: "SaveTemplateConfig", Project: projectID, Err: err}
	}
	return s.writeDoc("SaveTemplateConfig", projectID, "config.json", data)
}

// LoadTemplateConfig loads and validates the template configuration.
func (s *Store) LoadTemplateConfig(projectID string) (*stampgen.Template, error) {
	data, err := os.ReadFile(filepath.Join(s.ProjectDir(projectID), "config.json"))
	if err != nil {
		return nil, &StorageError{Op: "LoadTemplateConfig", Project: projectID, Err: err}
	}
	t := new(stampgen.Template)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, &StorageError{Op: "LoadTemplateConfig", Project: projectID, Err: err}
	}
	return t, nil
}

// SaveRows persists the data rows document.
func (s *Store) SaveRows(projectID string, rows []stampgen.DataRow) error {
	data, err := json.MarshalIndent(rowDocument{Data: rows}, "", "  ")
	if err != nil {
		return &StorageError{Op: "SaveRows", Project: projectID, Err: err}
	}
	return s.writeDoc("SaveRows", projectID, "data.json", data)
}

// LoadRows loads the data rows. A project with no rows document yet yields
// an empty slice, not an error.
func (s *Store) LoadRows(projectID string) ([]stampgen.DataRow, error) {
	data, err := os.ReadFile(filepath.Join(s.ProjectDir(projectID), "data.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "LoadRows", Project: projectID, Err: err}
	}
	var doc rowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StorageError{Op: "LoadRows", Project: projectID, Err: err}
	}
	return doc.Data, nil
}

// SaveTemplatePDF stores the template PDF bytes under the given filename and
// records the filename in the project metadata.
func (s *Store) SaveTemplatePDF(projectID, filename string, data []byte) error {
	if err := s.writeDoc("SaveTemplatePDF", projectID, filename, data); err != nil {
		return err
	}
	p, err := s.Project(projectID)
	if err != nil {
		return err
	}
	p.PDFFileName = filename
	return s.UpdateProject(p)
}

// LoadTemplatePDF loads the template PDF bytes recorded for the project.
func (s *Store) LoadTemplatePDF(projectID string) ([]byte, error) {
	p, err := s.Project(projectID)
	if err != nil {
		return nil, err
	}
	if p.PDFFileName == "" {
		return nil, &StorageError{Op: "LoadTemplatePDF", Project: projectID, Err: errors.New("store: no template PDF recorded")}
	}
	data, err := os.ReadFile(filepath.Join(s.ProjectDir(projectID), p.PDFFileName))
	if err != nil {
		return nil, &StorageError{Op: "LoadTemplatePDF", Project: projectID, Err: err}
	}
	return data, nil
}

// ProjectData is the merged in-memory view of one project's documents, as an
// editing or generation session needs it.
type ProjectData struct {
	Project  Project
	Template *stampgen.Template
	Rows     []stampgen.DataRow
	PDF      []byte // nil when no template PDF has been stored yet
}

// LoadProject loads the full project view: metadata, template configuration,
// data rows and template PDF bytes. The configuration is required; rows and
// PDF bytes may be absent.
func (s *Store) LoadProject(projectID string) (*ProjectData, error) {
	p, err := s.Project(projectID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.LoadTemplateConfig(projectID)
	if err != nil {
		return nil, err
	}
	rows, err := s.LoadRows(projectID)
	if err != nil {
		return nil, err
	}
	var pdf []byte
	if p.PDFFileName != "" {
		if pdf, err = s.LoadTemplatePDF(projectID); err != nil {
			return nil, err
		}
	}
	return &ProjectData{Project: p, Template: tpl, Rows: rows, PDF: pdf}, nil
}

func (s *Store) writeDoc(op, projectID, name string, data []byte) error {
	dir := s.ProjectDir(projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: op, Project: projectID, Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return &StorageError{Op: op, Project: projectID, Err: err}
	}
	return nil
}

func (s *Store) saveList(projects []Project) error {
	list := projectList{Projects: projects, LastUpdated: time.Now()}
	if list.Projects == nil {
		list.Projects = []Project{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &StorageError{Op: "SaveProjects", Err: err}
	}
	if err := os.WriteFile(s.listPath(), data, 0o644); err != nil {
		return &StorageError{Op: "SaveProjects", Err: err}
	}
	return nil
}
