// Package nav holds the dashboard navigation state: which section is shown
// and, inside Projects, whether the grid or one project's detail page is open.
package nav

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tgienger/taskbox/internal/models"
)

// ErrIllegalTransition is returned when a transition is not valid from the current state
var ErrIllegalTransition = errors.New("illegal transition")

// Section is a top-level navigation category
type Section int

const (
	SectionProjects Section = iota
	SectionEmployees
	SectionTasks
	SectionLicenses
	SectionBonds
	SectionPayroll
	SectionHR
	SectionExploration
	SectionCommercial
	SectionResidential
)

// Sections lists every section in sidebar order
var Sections = []Section{
	SectionProjects,
	SectionEmployees,
	SectionTasks,
	SectionLicenses,
	SectionBonds,
	SectionPayroll,
	SectionHR,
	SectionExploration,
	SectionCommercial,
	SectionResidential,
}

var sectionInfo = map[Section]struct{ title, slug string }{
	SectionProjects:    {"Projects", "projects"},
	SectionEmployees:   {"Employees", "employees"},
	SectionTasks:       {"Tasks", "tasks"},
	SectionLicenses:    {"Licenses & Permits", "licenses"},
	SectionBonds:       {"Bonds", "bonds"},
	SectionPayroll:     {"Payroll", "payroll"},
	SectionHR:          {"HR", "hr"},
	SectionExploration: {"Exploration", "exploration"},
	SectionCommercial:  {"Commercial", "commercial"},
	SectionResidential: {"Residential", "residential"},
}

// Valid reports whether s is a known section
func (s Section) Valid() bool {
	_, ok := sectionInfo[s]
	return ok
}

// Title is the display name
func (s Section) Title() string {
	if info, ok := sectionInfo[s]; ok {
		return info.title
	}
	return "Unknown"
}

// String returns the stable slug used in settings, URLs and flags
func (s Section) String() string {
	if info, ok := sectionInfo[s]; ok {
		return info.slug
	}
	return "unknown"
}

// Placeholder reports whether the section has no data of its own yet
func (s Section) Placeholder() bool {
	return s != SectionProjects && s != SectionEmployees && s != SectionTasks
}

// ParseSection resolves a slug back to its section
func ParseSection(slug string) (Section, error) {
	for _, s := range Sections {
		if s.String() == slug {
			return s, nil
		}
	}
	return 0, goerr.Wrap(ErrIllegalTransition, "unknown section", goerr.V("section", slug))
}

// ProjectLookup resolves a project id, returning an error wrapping db.ErrNotFound if absent
type ProjectLookup interface {
	GetProject(id int64) (*models.Project, error)
}

// State is the navigation state of one session. It is a value: transitions
// return a new State and leave the receiver untouched.
type State struct {
	Section Section
	// Open is the project shown in detail, nil while the grid is shown
	Open *int64
}

// Initial is the state a fresh session starts in: Projects, grid view
func Initial() State {
	return State{Section: SectionProjects}
}

// InDetail reports whether a project detail page is open
func (s State) InDetail() bool {
	return s.Open != nil
}

// ProjectID returns the open project's id, ok=false in grid view
func (s State) ProjectID() (int64, bool) {
	if s.Open == nil {
		return 0, false
	}
	return *s.Open, true
}

// SelectSection switches the top-level section. The open project, if any,
// is kept so that coming back to Projects shows the same detail page.
func (s State) SelectSection(section Section) (State, error) {
	if !section.Valid() {
		return s, goerr.Wrap(ErrIllegalTransition, "unknown section", goerr.V("section", int(section)))
	}
	next := s
	next.Section = section
	return next, nil
}

// OpenProject shows the detail page of project id. The project must exist;
// otherwise the state is returned unchanged along with the lookup error.
func (s State) OpenProject(lookup ProjectLookup, id int64) (State, error) {
	if _, err := lookup.GetProject(id); err != nil {
		return s, goerr.Wrap(err, "cannot open project", goerr.V("project_id", id))
	}
	return State{Section: SectionProjects, Open: &id}, nil
}

// CloseProject returns from a detail page to the grid
func (s State) CloseProject() (State, error) {
	if s.Open == nil {
		return s, goerr.Wrap(ErrIllegalTransition, "no project is open")
	}
	next := s
	next.Open = nil
	return next, nil
}

// ProjectDeleted drops back to the grid if the deleted project was open
func (s State) ProjectDeleted(id int64) State {
	if s.Open != nil && *s.Open == id {
		next := s
		next.Open = nil
		return next
	}
	return s
}

// MarshalText encodes the section as its slug
func (s Section) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, goerr.Wrap(ErrIllegalTransition, "unknown section", goerr.V("section", int(s)))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a slug
func (s *Section) UnmarshalText(text []byte) error {
	parsed, err := ParseSection(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
