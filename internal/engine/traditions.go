package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/jon4hz/astroadvisor/internal/database"
	"github.com/jon4hz/astroadvisor/internal/llm"
)

// GuruAnswer is the reply of a guru.
type GuruAnswer struct {
	Response  string
	Tradition string
}

func (e *Engine) ListPhilosophies(ctx context.Context, page database.Page) ([]database.Philosophy, error) {
	return e.db.ListPhilosophies(ctx, page)
}

func (e *Engine) GetPhilosophy(ctx context.Context, id uint) (*database.Philosophy, error) {
	p, err := e.db.GetPhilosophy(ctx, id)
	return p, mapNotFound(err, "Philosophy")
}

func (e *Engine) ListReligions(ctx context.Context, page database.Page) ([]database.Religion, error) {
	return e.db.ListReligions(ctx, page)
}

func (e *Engine) GetReligion(ctx context.Context, id uint) (*database.Religion, error) {
	r, err := e.db.GetReligion(ctx, id)
	return r, mapNotFound(err, "Religion")
}

func (e *Engine) ListAstrologicalSystems(ctx context.Context, page database.Page) ([]database.AstrologicalSystem, error) {
	return e.db.ListAstrologicalSystems(ctx, page)
}

func (e *Engine) GetAstrologicalSystem(ctx context.Context, id uint) (*database.AstrologicalSystem, error) {
	a, err := e.db.GetAstrologicalSystem(ctx, id)
	return a, mapNotFound(err, "Astrological system")
}

// Search matches query against the names and descriptions of all reference records.
// A query without matches yields three empty lists.
func (e *Engine) Search(ctx context.Context, query string) (*database.Catalog, error) {
	return e.db.SearchTraditions(ctx, strings.TrimSpace(query))
}

// Knowledge returns the complete reference catalog.
func (e *Engine) Knowledge(ctx context.Context) (*database.Catalog, error) {
	var (
		catalog database.Catalog
		err     error
	)
	all := database.Page{}
	if catalog.Philosophies, err = e.db.ListPhilosophies(ctx, all); err != nil {
		return nil, err
	}
	if catalog.Religions, err = e.db.ListReligions(ctx, all); err != nil {
		return nil, err
	}
	if catalog.AstrologicalSystems, err = e.db.ListAstrologicalSystems(ctx, all); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// GuruChat forwards content to a guru speaking for the tradition of the given kind and id.
func (e *Engine) GuruChat(ctx context.Context, kind database.TraditionKind, id uint, content string) (*GuruAnswer, error) {
	tradition, err := e.db.GetTradition(ctx, kind, id)
	if err != nil {
		return nil, mapNotFound(err, "Tradition")
	}

	temperature := e.cfg.LLM.GuruTemperature
	response, err := e.llm.Complete(ctx, llm.Request{
		Model: e.cfg.LLM.GuruModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: guruPersona(tradition)},
			{Role: llm.RoleUser, Content: content},
		},
		Temperature: &temperature,
		MaxTokens:   e.cfg.LLM.GuruMaxTokens,
	})
	if err != nil {
		return nil, upstream(err)
	}

	return &GuruAnswer{
		Response:  response,
		Tradition: tradition.Name,
	}, nil
}

func mapNotFound(err error, resource string) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(resource)
	}
	return err
}
