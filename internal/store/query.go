package store

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patient-portal-server/internal/apperr"
)

// ErrNotFound is returned when a record does not exist for the requesting
// owner. Records of other owners are indistinguishable from missing ones.
var ErrNotFound = apperr.NotFound("Record not found")

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort orders a list by one field.
type Sort struct {
	Field     string
	Direction Direction
}

// Filter narrows a list. Zero values are ignored.
type Filter struct {
	FormType       string
	PatientID      string
	SubmittedAfter time.Time
}

// ListOptions is the optional filter and sort of a list or observe call.
type ListOptions struct {
	Filter Filter
	Sort   Sort
	Limit  int
}

// ChangeNotifier is told after a write for an owner has committed.
type ChangeNotifier interface {
	Changed(owner string)
}

// ParseDirection accepts asc/desc in any case; empty means def.
func ParseDirection(s string, def Direction) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case "":
		return def, nil
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", apperr.Field("order", "must be asc or desc")
}

// orderBy resolves a sort against the sortable columns of an entity.
func orderBy(db *gorm.DB, sort Sort, columns map[string]string, def Sort) (*gorm.DB, error) {
	if sort.Field == "" {
		sort.Field = def.Field
	}
	if sort.Direction == "" {
		sort.Direction = def.Direction
	}
	column, ok := columns[sort.Field]
	if !ok {
		return nil, apperr.Field("sort", "cannot sort by "+sort.Field)
	}
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Direction == Descending}).
		Order("id"), nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
