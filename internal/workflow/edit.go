package workflow

import (
	"errors"

	"github.com/hoangphuccoder123/tutorbond/internal/cv"
	"github.com/hoangphuccoder123/tutorbond/internal/i18n"
	"go.uber.org/zap"
)

// EditField sets one scalar field of the document.
func (c *Controller) EditField(field cv.Field, value string) (Redraw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil {
		return RedrawNone, c.fail(ValidationError, i18n.MsgNoDocument, cv.ErrNoDocument)
	}
	if err := c.state.Document.Set(field, value); err != nil {
		return RedrawNone, c.editError(err)
	}
	return RedrawPreview, nil
}

// EditExperience sets one field of the experience entry at index.
func (c *Controller) EditExperience(index int, field cv.ExperienceField, value string) (Redraw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil {
		return RedrawNone, c.fail(ValidationError, i18n.MsgNoDocument, cv.ErrNoDocument)
	}
	if err := c.state.Document.SetExperience(index, field, value); err != nil {
		return RedrawNone, c.editError(err)
	}
	return RedrawPreview, nil
}

// AddExperience appends an empty entry and returns its index.
func (c *Controller) AddExperience() (int, Redraw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil {
		return -1, RedrawNone, c.fail(ValidationError, i18n.MsgNoDocument, cv.ErrNoDocument)
	}
	index, err := c.state.Document.AddExperience()
	if err != nil {
		return -1, RedrawNone, c.editError(err)
	}
	return index, RedrawEditor | RedrawPreview, nil
}

func (c *Controller) RemoveExperience(index int) (Redraw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil {
		return RedrawNone, c.fail(ValidationError, i18n.MsgNoDocument, cv.ErrNoDocument)
	}
	if err := c.state.Document.RemoveExperience(index); err != nil {
		return RedrawNone, c.editError(err)
	}
	return RedrawEditor | RedrawPreview, nil
}

// ApplySuggestions copies the rewritten summary and experience descriptions
// into the document and switches to the preview.
func (c *Controller) ApplySuggestions() (cv.Applied, Redraw, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Document == nil || c.state.Analysis == nil || c.state.Analysis.RewrittenContent == nil {
		return cv.Applied{}, RedrawNone, c.fail(ValidationError, i18n.MsgNoSuggestions, cv.ErrNoSuggestions)
	}

	applied, err := cv.ApplySuggestions(c.state.Document, c.state.Analysis.RewrittenContent, c.match)
	if err != nil {
		return cv.Applied{}, RedrawNone, c.editError(err)
	}

	c.state.View = ViewPreview
	c.logger.Debug("applied suggestions",
		zap.Ints("experience", applied.Experience),
		zap.Bool("summary", applied.Summary),
	)
	return applied, RedrawAll, nil
}

func (c *Controller) editError(err error) error {
	switch {
	case errors.Is(err, cv.ErrIndexOutOfRange):
		return c.fail(ValidationError, i18n.MsgUnknownExperience, err)
	case errors.Is(err, cv.ErrUnknownField):
		return c.fail(ValidationError, i18n.MsgUnknownField, err)
	case errors.Is(err, cv.ErrNoSuggestions):
		return c.fail(ValidationError, i18n.MsgNoSuggestions, err)
	default:
		return c.fail(ValidationError, i18n.MsgNoDocument, err)
	}
}
