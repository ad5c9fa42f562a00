package cv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *Document {
	return &Document{
		FullName: "Nguyen Van A",
		Email:    "a@example.com",
		Summary:  "Backend developer.",
		Experience: []ExperienceEntry{
			{Company: "ACME", Title: "Dev", Description: "Built X. Improved Y."},
			{Company: "Globex", Title: "Lead", Description: "Led team."},
		},
		Skills: "Go, SQL",
	}
}

func TestParseField(t *testing.T) {
	for _, field := range Fields {
		parsed, err := ParseField(field.String())
		require.NoError(t, err)
		assert.Equal(t, field, parsed)
	}

	parsed, err := ParseField(" LinkedIn ")
	require.NoError(t, err)
	assert.Equal(t, FieldLinkedIn, parsed)

	_, err = ParseField("experience")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ParseField("__proto__")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseExperienceField(t *testing.T) {
	for _, field := range ExperienceFields {
		parsed, err := ParseExperienceField(field.String())
		require.NoError(t, err)
		assert.Equal(t, field, parsed)
	}

	_, err := ParseExperienceField("salary")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSetAndGet(t *testing.T) {
	doc := sampleDocument()

	require.NoError(t, doc.Set(FieldPhone, "0900 000 000"))
	got, err := doc.Get(FieldPhone)
	require.NoError(t, err)
	assert.Equal(t, "0900 000 000", got)

	assert.ErrorIs(t, doc.Set(Field(99), "x"), ErrUnknownField)

	var missing *Document
	assert.ErrorIs(t, missing.Set(FieldEmail, "x"), ErrNoDocument)
}

func TestSetExperienceIsolation(t *testing.T) {
	doc := sampleDocument()
	before := doc.Clone()

	require.NoError(t, doc.SetExperience(0, ExperienceDescription, "Shipped Z."))

	assert.Equal(t, "Shipped Z.", doc.Experience[0].Description)
	assert.Equal(t, before.Experience[0].Company, doc.Experience[0].Company)
	assert.Equal(t, before.Experience[1], doc.Experience[1])

	err := doc.SetExperience(5, ExperienceTitle, "x")
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestAddAndRemoveExperience(t *testing.T) {
	doc := sampleDocument()

	index, err := doc.AddExperience()
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, ExperienceEntry{}, doc.Experience[2])

	require.NoError(t, doc.RemoveExperience(0))
	require.Len(t, doc.Experience, 2)
	assert.Equal(t, "Globex", doc.Experience[0].Company)

	assert.ErrorIs(t, doc.RemoveExperience(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, doc.RemoveExperience(2), ErrIndexOutOfRange)
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()
	clone.Experience[0].Company = "Changed"

	assert.Equal(t, "ACME", doc.Experience[0].Company)

	var nilDoc *Document
	assert.Nil(t, nilDoc.Clone())
}

func TestNormalize(t *testing.T) {
	doc := &Document{FullName: "A"}
	doc.Normalize()
	assert.NotNil(t, doc.Experience)
	assert.Empty(t, doc.Experience)
}
