package models

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
)

type Category string

const (
	CategoryIntellectual Category = "Intellectual"
	CategoryPhysical     Category = "Physical"
	CategoryService      Category = "Service"
	CategorySocial       Category = "Social"
	CategorySpiritual    Category = "Spiritual"
	CategoryOther        Category = "Other"
)

// Categories lists the event categories in display order.
var Categories = []Category{
	CategoryIntellectual, CategoryPhysical, CategoryService,
	CategorySocial, CategorySpiritual, CategoryOther,
}

var categoryColors = map[Category]string{
	CategoryIntellectual: "#FFB347",
	CategoryPhysical:     "#FDE047",
	CategoryService:      "#EF4444",
	CategorySocial:       "#EC4899",
	CategorySpiritual:    "#B0E0E6",
	CategoryOther:        "#22C55E",
}

// Color returns the fixed colour of c; unknown categories get Other's.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[CategoryOther]
}

// ParseCategory matches s case-insensitively against Categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", common.ErrorValidation, s)
}

var clock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Event is a calendar entry. Date is "YYYY-MM-DD"; StartTime and EndTime
// are optional "HH:mm" values.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	PosterURL   string    `json:"posterUrl"`
	RSVPLink    string    `json:"rsvpLink,omitempty"`
	Location    string    `json:"location,omitempty"`
	Category    Category  `json:"category"`
	Color       string    `json:"color"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks required fields and formats.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrorValidation)
	}
	for _, t := range []string{e.StartTime, e.EndTime} {
		if t != "" && !clock.MatchString(t) {
			return fmt.Errorf("%w: time %q must be HH:mm", common.ErrorValidation, t)
		}
	}
	if !slices.Contains(Categories, e.Category) {
		return fmt.Errorf("%w: unknown category %q", common.ErrorValidation, e.Category)
	}
	return nil
}

// StartsAt returns the event start in loc. Events without a start time
// start at midnight.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if e.StartTime == "" {
		return time.ParseInLocation(time.DateOnly, e.Date, loc)
	}
	return time.ParseInLocation("2006-01-02 15:04", e.Date+" "+e.StartTime, loc)
}

// Row returns the events row for e without id and updated_at.
func (e Event) Row() rowstore.Row {
	return rowstore.Row{
		"title":       e.Title,
		"description": e.Description,
		"date":        e.Date,
		"start_time":  e.StartTime,
		"end_time":    e.EndTime,
		"poster_url":  e.PosterURL,
		"rsvp_link":   e.RSVPLink,
		"location":    e.Location,
		"category":    string(e.Category),
		"color":       e.Category.Color(),
		"created_by":  e.CreatedBy,
	}
}

func EventFromRow(r rowstore.Row) Event {
	updated, _ := timex.ParseTimestamp(r.String("updated_at"))
	return Event{
		ID:          r.String("id"),
		Title:       r.String("title"),
		Description: r.String("description"),
		Date:        r.String("date"),
		StartTime:   r.String("start_time"),
		EndTime:     r.String("end_time"),
		PosterURL:   r.String("poster_url"),
		RSVPLink:    r.String("rsvp_link"),
		Location:    r.String("location"),
		Category:    Category(r.String("category")),
		Color:       r.String("color"),
		CreatedBy:   r.String("created_by"),
		UpdatedAt:   updated,
	}
}
