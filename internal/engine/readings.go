package engine

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/llm"
)

// BirthData is the astrological input of a reading.
type BirthData struct {
	Name      string
	BirthDate string
	BirthTime *string
	Location  string
}

// Action types written to the user history.
const (
	ActionCreateReading = "create_reading"
	ActionDeleteReading = "delete_reading"
	ActionGetAdvice     = "get_advice"
)

// GetAdvice asks the chat completion API for advice and stores it as a reading owned by user.
func (e *Engine) GetAdvice(ctx context.Context, user *database.User, in BirthData) (*database.Reading, error) {
	advice, err := e.advise(ctx, advicePersona, advicePrompt(in))
	if err != nil {
		return nil, err
	}

	reading := newReading(in, advice, &user.ID)
	if err := e.db.CreateReading(ctx, reading); err != nil {
		return nil, err
	}

	e.recordAction(ctx, user.ID, ActionGetAdvice, map[string]any{"reading_id": reading.ID})
	return reading, nil
}

// QuickAdvice is the anonymous variant of GetAdvice. The stored reading has no owner.
func (e *Engine) QuickAdvice(ctx context.Context, in BirthData) (*database.Reading, error) {
	advice, err := e.advise(ctx, quickAdvicePersona, quickAdvicePrompt(in))
	if err != nil {
		return nil, err
	}

	reading := newReading(in, advice, nil)
	if err := e.db.CreateReading(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (e *Engine) advise(ctx context.Context, persona, prompt string) (string, error) {
	advice, err := e.llm.Complete(ctx, llm.Request{
		Model: e.cfg.LLM.AdviceModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: persona},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Error("failed to generate advice", "error", err)
		return "", upstream(err)
	}
	return advice, nil
}

func newReading(in BirthData, advice string, userID *uint) *database.Reading {
	return &database.Reading{
		Name:      in.Name,
		BirthDate: in.BirthDate,
		BirthTime: in.BirthTime,
		Location:  in.Location,
		Advice:    advice,
		UserID:    userID,
	}
}

// ListReadings returns a page of the user's readings.
func (e *Engine) ListReadings(ctx context.Context, user *database.User, page database.Page, order database.SortOrder) ([]database.Reading, error) {
	return e.db.ListReadingsByUser(ctx, user.ID, page, order)
}

// GetReading returns one of the user's readings. Readings of other users are reported as not found.
func (e *Engine) GetReading(ctx context.Context, user *database.User, id uint) (*database.Reading, error) {
	reading, err := e.db.GetReadingForUser(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("Reading")
		}
		return nil, err
	}
	return reading, nil
}

// CreateReading stores a reading supplied by the user.
func (e *Engine) CreateReading(ctx context.Context, user *database.User, in BirthData, advice string) (*database.Reading, error) {
	reading := newReading(in, advice, &user.ID)
	if err := e.db.CreateReading(ctx, reading); err != nil {
		return nil, err
	}

	e.recordAction(ctx, user.ID, ActionCreateReading, map[string]any{"reading_id": reading.ID})
	return reading, nil
}

// DeleteReading removes one of the user's readings.
func (e *Engine) DeleteReading(ctx context.Context, user *database.User, id uint) error {
	if err := e.db.DeleteReadingForUser(ctx, id, user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return notFound("Reading")
		}
		return err
	}

	e.recordAction(ctx, user.ID, ActionDeleteReading, map[string]any{"reading_id": id})
	return nil
}
