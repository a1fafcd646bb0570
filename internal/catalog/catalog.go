package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Provider is the closed set of booking platforms with an adapter.
type Provider string

const (
	MemberSports Provider = "membersports"
	Chronogolf   Provider = "chronogolf"
	ForeUp       Provider = "foreup"
	ClubCaddie   Provider = "clubcaddie"
	Quick18      Provider = "quick18"
)

// Course is one bookable layout. Identifier fields are provider specific;
// unused ones stay zero.
type Course struct {
	Provider Provider `json:"provider"`
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	ClubID   int      `json:"club_id"`
	CourseID int      `json:"course_id"`

	GroupID      int    `json:"group_id,omitempty"`
	ConfigType   int    `json:"config_type,omitempty"`
	ScheduleID   int    `json:"schedule_id,omitempty"`
	BookingClass string `json:"booking_class,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	Subdomain    string `json:"subdomain,omitempty"`
	UpstreamName string `json:"upstream_name,omitempty"`
	Holes        int    `json:"holes,omitempty"`
	BookingURL   string `json:"booking_url,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
}

//go:embed data/courses.json
var dataFS embed.FS

// Catalog is the static course list, immutable after load.
type Catalog struct {
	courses []Course
}

func New(courses []Course) *Catalog {
	list := make([]Course, len(courses))
	copy(list, courses)
	return &Catalog{courses: list}
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = dataFS.ReadFile("data/courses.json")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var courses []Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, c := range courses {
		if c.Provider == "" || c.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: provider and name are required", i)
		}
	}
	return New(courses), nil
}

func (c *Catalog) Courses() []Course {
	list := make([]Course, len(c.courses))
	copy(list, c.courses)
	return list
}

// Lookup finds a course by its provider identifier set. A zero courseID
// matches the first course of the club.
func (c *Catalog) Lookup(provider Provider, clubID, courseID int) (Course, bool) {
	for _, course := range c.courses {
		if course.Provider != provider || course.ClubID != clubID {
			continue
		}
		if courseID == 0 || course.CourseID == courseID {
			return course, true
		}
	}
	return Course{}, false
}

// Resolve picks the course an alert targets. Several layouts can share a
// club id, so an exact name match wins; otherwise the first club match.
// An empty provider matches any provider.
func (c *Catalog) Resolve(provider Provider, clubID int, name string) (Course, bool) {
	var first *Course
	for i := range c.courses {
		course := &c.courses[i]
		if course.ClubID != clubID || (provider != "" && course.Provider != provider) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(course.Name), strings.TrimSpace(name)) {
			return *course, true
		}
		if first == nil {
			first = course
		}
	}
	if first == nil {
		return Course{}, false
	}
	return *first, true
}
