package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmoreno/stampgen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "projects.json")); err != nil {
		t.Errorf("projects.json not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "projects")); err != nil {
		t.Errorf("projects dir not created: %v", err)
	}

	// Reopening an existing store must not clobber it.
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := s.AddProject(Project{ID: "p1", Name: "First"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second reopen failed: %v", err)
	}
	projects, err := s2.Projects()
	if err != nil {
		t.Fatalf("Projects failed: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("got %d projects after reopen, want 1", len(projects))
	}
}

func TestProjectCRUD(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddProject(Project{ID: "p1", Name: "Badges"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}
	if err := s.AddProject(Project{ID: "p1", Name: "Duplicate"}); err == nil {
		t.Error("expected error adding duplicate project id")
	}

	p, err := s.Project("p1")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if p.Name != "Badges" || p.CreatedAt.IsZero() {
		t.Errorf("project = %+v", p)
	}

	p.Description = "conference badges"
	if err := s.UpdateProject(p); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	p, _ = s.Project("p1")
	if p.Description != "conference badges" {
		t.Errorf("update not persisted: %+v", p)
	}

	if _, err := s.Project("missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	if err := s.DeleteProject("p1"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	if _, err := s.Project("p1"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
	}
	if _, err := os.Stat(s.ProjectDir("p1")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("project folder still present: %v", err)
	}
}

func TestTemplateConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddProject(Project{ID: "p1", Name: "Badges"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	tpl := stampgen.NewTemplate(600, 800)
	if err := tpl.AddDataNode("name"); err != nil {
		t.Fatalf("AddDataNode failed: %v", err)
	}
	if _, err := tpl.AddFieldInstance("name"); err != nil {
		t.Fatalf("AddFieldInstance failed: %v", err)
	}

	if err := s.SaveTemplateConfig("p1", tpl); err != nil {
		t.Fatalf("SaveTemplateConfig failed: %v", err)
	}
	loaded, err := s.LoadTemplateConfig("p1")
	if err != nil {
		t.Fatalf("LoadTemplateConfig failed: %v", err)
	}
	if len(loaded.Fields()) != 1 || len(loaded.DataNodes()) != 1 {
		t.Errorf("loaded %d fields, %d nodes", len(loaded.Fields()), len(loaded.DataNodes()))
	}
	if loaded.PageWidth() != 600 || loaded.PageHeight() != 800 {
		t.Errorf("page = %gx%g", loaded.PageWidth(), loaded.PageHeight())
	}
}

func TestLoadTemplateConfigMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadTemplateConfig("nope")
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StorageError, got %v", err)
	}
	if serr.Project != "nope" {
		t.Errorf("error project = %q", serr.Project)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddProject(Project{ID: "p1"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	// No rows saved yet: empty, not an error.
	rows, err := s.LoadRows("p1")
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}

	in := []stampgen.DataRow{
		{"name": "Al", "city": "Lisbon"},
		{"name": "Alexandria", "city": ""},
	}
	if err := s.SaveRows("p1", in); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}
	rows, err = s.LoadRows("p1")
	if err != nil {
		t.Fatalf("LoadRows failed: %v", err)
	}
	if len(rows) != 2 || rows[0]["name"] != "Al" || rows[1]["name"] != "Alexandria" {
		t.Errorf("rows = %v", rows)
	}
}

func TestTemplatePDFRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddProject(Project{ID: "p1"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	data := []byte("%PDF-1.4 fake template")
	if err := s.SaveTemplatePDF("p1", "template.pdf", data); err != nil {
		t.Fatalf("SaveTemplatePDF failed: %v", err)
	}

	p, err := s.Project("p1")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if p.PDFFileName != "template.pdf" {
		t.Errorf("PDFFileName = %q", p.PDFFileName)
	}

	got, err := s.LoadTemplatePDF("p1")
	if err != nil {
		t.Fatalf("LoadTemplatePDF failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("template bytes mismatch")
	}
}

func TestLoadProject(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddProject(Project{ID: "p1", Name: "Badges"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	// Configuration is required.
	if _, err := s.LoadProject("p1"); err == nil {
		t.Error("expected error loading project without a config")
	}

	tpl := stampgen.NewTemplate(600, 800)
	if err := tpl.AddDataNode("name"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTemplateConfig("p1", tpl); err != nil {
		t.Fatalf("SaveTemplateConfig failed: %v", err)
	}

	// Rows and PDF are optional.
	pd, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if pd.Project.Name != "Badges" || pd.Template == nil {
		t.Errorf("project data = %+v", pd)
	}
	if len(pd.Rows) != 0 || pd.PDF != nil {
		t.Errorf("expected empty rows and nil PDF, got %d rows, %d bytes", len(pd.Rows), len(pd.PDF))
	}

	if err := s.SaveRows("p1", []stampgen.DataRow{{"name": "Al"}}); err != nil {
		t.Fatalf("SaveRows failed: %v", err)
	}
	if err := s.SaveTemplatePDF("p1", "template.pdf", []byte("%PDF-1.4 fake")); err != nil {
		t.Fatalf("SaveTemplatePDF failed: %v", err)
	}
	pd, err = s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if len(pd.Rows) != 1 || len(pd.PDF) == 0 {
		t.Errorf("merged view incomplete: %d rows, %d bytes", len(pd.Rows), len(pd.PDF))
	}
}

func TestLoadTemplatePDFWithoutOne(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddProject(Project{ID: "p1"}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}
	if _, err := s.LoadTemplatePDF("p1"); err == nil {
		t.Error("expected error when no template PDF is recorded")
	}
}
