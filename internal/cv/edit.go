package cv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField    = errors.New("unknown cv field")
	ErrIndexOutOfRange = errors.New("experience index out of range")
	ErrNoDocument      = errors.New("no cv document")
)

// Field is an editable scalar field of a Document.
type Field int

const (
	FieldFullName Field = iota + 1
	FieldEmail
	FieldPhone
	FieldLinkedIn
	FieldSummary
	FieldEducation
	FieldSkills
)

// Fields lists the scalar fields in editor order.
var Fields = []Field{FieldFullName, FieldEmail, FieldPhone, FieldLinkedIn, FieldSummary, FieldEducation, FieldSkills}

var fieldNames = map[Field]string{
	FieldFullName:  "fullName",
	FieldEmail:     "email",
	FieldPhone:     "phone",
	FieldLinkedIn:  "linkedin",
	FieldSummary:   "summary",
	FieldEducation: "education",
	FieldSkills:    "skills",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField maps a schema field name (case-insensitive) to a Field.
func ParseField(name string) (Field, error) {
	name = strings.TrimSpace(name)
	for field, known := range fieldNames {
		if strings.EqualFold(known, name) {
			return field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ExperienceField is an editable field of an ExperienceEntry.
type ExperienceField int

const (
	ExperienceCompany ExperienceField = iota + 1
	ExperienceTitle
	ExperienceDescription
)

var ExperienceFields = []ExperienceField{ExperienceCompany, ExperienceTitle, ExperienceDescription}

var experienceFieldNames = map[ExperienceField]string{
	ExperienceCompany:     "company",
	ExperienceTitle:       "title",
	ExperienceDescription: "description",
}

func (f ExperienceField) String() string {
	if name, ok := experienceFieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("ExperienceField(%d)", int(f))
}

func ParseExperienceField(name string) (ExperienceField, error) {
	name = strings.TrimSpace(name)
	for field, known := range experienceFieldNames {
		if strings.EqualFold(known, name) {
			return field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Get returns the value of a scalar field.
func (d *Document) Get(field Field) (string, error) {
	p, err := d.fieldPtr(field)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set replaces the value of a scalar field.
func (d *Document) Set(field Field, value string) error {
	p, err := d.fieldPtr(field)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (d *Document) fieldPtr(field Field) (*string, error) {
	if d == nil {
		return nil, ErrNoDocument
	}
	switch field {
	case FieldFullName:
		return &d.FullName, nil
	case FieldEmail:
		return &d.Email, nil
	case FieldPhone:
		return &d.Phone, nil
	case FieldLinkedIn:
		return &d.LinkedIn, nil
	case FieldSummary:
		return &d.Summary, nil
	case FieldEducation:
		return &d.Education, nil
	case FieldSkills:
		return &d.Skills, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// SetExperience replaces one field of the entry at index.
func (d *Document) SetExperience(index int, field ExperienceField, value string) error {
	if d == nil {
		return ErrNoDocument
	}
	if index < 0 || index >= len(d.Experience) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	entry := &d.Experience[index]
	switch field {
	case ExperienceCompany:
		entry.Company = value
	case ExperienceTitle:
		entry.Title = value
	case ExperienceDescription:
		entry.Description = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// AddExperience appends an empty entry and returns its index.
func (d *Document) AddExperience() (int, error) {
	if d == nil {
		return 0, ErrNoDocument
	}
	d.Experience = append(d.Experience, ExperienceEntry{})
	return len(d.Experience) - 1, nil
}

// RemoveExperience deletes the entry at index.
func (d *Document) RemoveExperience(index int) error {
	if d == nil {
		return ErrNoDocument
	}
	if index < 0 || index >= len(d.Experience) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	d.Experience = append(d.Experience[:index], d.Experience[index+1:]...)
	return nil
}
