package database

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TraditionKind identifies one of the three reference catalogs.
type TraditionKind string

const (
	TraditionPhilosophy         TraditionKind = "philosophy"
	TraditionReligion           TraditionKind = "religion"
	TraditionAstrologicalSystem TraditionKind = "astrological_system"
)

// ParseTraditionKind maps a route discriminator onto a kind.
// Anything that is not a philosophy or a religion is treated as an astrological system.
func ParseTraditionKind(s string) TraditionKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "philosophy":
		return TraditionPhilosophy
	case "religion":
		return TraditionReligion
	default:
		return TraditionAstrologicalSystem
	}
}

// String returns a human readable name of the kind.
func (k TraditionKind) String() string {
	switch k {
	case TraditionPhilosophy:
		return "Philosophy"
	case TraditionReligion:
		return "Religion"
	default:
		return "Astrological system"
	}
}

// Philosophy is a reference record of a philosophical school.
type Philosophy struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	Description   string `gorm:"type:text"`
	Origin        string
	KeyPrinciples datatypes.JSONSlice[string]
	CreatedAt     time.Time
}

// Religion is a reference record of a religious tradition.
type Religion struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Description string `gorm:"type:text"`
	Origin      string
	SacredTexts datatypes.JSONSlice[string]
	Practices   datatypes.JSONSlice[string]
	CreatedAt   time.Time
}

// AstrologicalSystem is a reference record of an astrological system.
type AstrologicalSystem struct {
	ID          uint `gorm:"primaryKey"`
	Name        string
	Origin      string
	Description string `gorm:"type:text"`
	KeyConcepts datatypes.JSONSlice[string]
	ZodiacSigns datatypes.JSONSlice[string]
	CreatedAt   time.Time
}

// Tradition is the kind independent view of a reference record.
// Traits holds the list that characterizes the tradition: key principles for
// philosophies, practices for religions and key concepts for astrological systems.
type Tradition struct {
	Kind        TraditionKind
	ID          uint
	Name        string
	Description string
	Origin      string
	TraitLabel  string
	Traits      []string
}

func (p *Philosophy) Tradition() *Tradition {
	return &Tradition{
		Kind:        TraditionPhilosophy,
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Origin:      p.Origin,
		TraitLabel:  "Key Principles",
		Traits:      p.KeyPrinciples,
	}
}

func (r *Religion) Tradition() *Tradition {
	return &Tradition{
		Kind:        TraditionReligion,
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Origin:      r.Origin,
		TraitLabel:  "Practices",
		Traits:      r.Practices,
	}
}

func (a *AstrologicalSystem) Tradition() *Tradition {
	return &Tradition{
		Kind:        TraditionAstrologicalSystem,
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Origin:      a.Origin,
		TraitLabel:  "Key Concepts",
		Traits:      a.KeyConcepts,
	}
}

// Catalog groups reference records by kind.
type Catalog struct {
	Philosophies        []Philosophy
	Religions           []Religion
	AstrologicalSystems []AstrologicalSystem
}

// TraditionDB defines the reference catalog operations.
type TraditionDB interface {
	ListPhilosophies(ctx context.Context, page Page) ([]Philosophy, error)
	GetPhilosophy(ctx context.Context, id uint) (*Philosophy, error)
	ListReligions(ctx context.Context, page Page) ([]Religion, error)
	GetReligion(ctx context.Context, id uint) (*Religion, error)
	ListAstrologicalSystems(ctx context.Context, page Page) ([]AstrologicalSystem, error)
	GetAstrologicalSystem(ctx context.Context, id uint) (*AstrologicalSystem, error)
	GetTradition(ctx context.Context, kind TraditionKind, id uint) (*Tradition, error)
	SearchTraditions(ctx context.Context, query string) (*Catalog, error)
	SeedCatalog(ctx context.Context, force bool) (bool, error)
}

func (c *Client) ListPhilosophies(ctx context.Context, page Page) ([]Philosophy, error) {
	return list[Philosophy](ctx, c.db, page)
}

func (c *Client) GetPhilosophy(ctx context.Context, id uint) (*Philosophy, error) {
	return get[Philosophy](ctx, c.db, id)
}

func (c *Client) ListReligions(ctx context.Context, page Page) ([]Religion, error) {
	return list[Religion](ctx, c.db, page)
}

func (c *Client) GetReligion(ctx context.Context, id uint) (*Religion, error) {
	return get[Religion](ctx, c.db, id)
}

func (c *Client) ListAstrologicalSystems(ctx context.Context, page Page) ([]AstrologicalSystem, error) {
	return list[AstrologicalSystem](ctx, c.db, page)
}

func (c *Client) GetAstrologicalSystem(ctx context.Context, id uint) (*AstrologicalSystem, error) {
	return get[AstrologicalSystem](ctx, c.db, id)
}

// GetTradition resolves a reference record of the given kind.
func (c *Client) GetTradition(ctx context.Context, kind TraditionKind, id uint) (*Tradition, error) {
	switch kind {
	case TraditionPhilosophy:
		p, err := c.GetPhilosophy(ctx, id)
		if err != nil {
			return nil, err
		}
		return p.Tradition(), nil
	case TraditionReligion:
		r, err := c.GetReligion(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.Tradition(), nil
	default:
		a, err := c.GetAstrologicalSystem(ctx, id)
		if err != nil {
			return nil, err
		}
		return a.Tradition(), nil
	}
}

// SearchTraditions matches query case-insensitively as a substring of the
// name or description of every reference record.
func (c *Client) SearchTraditions(ctx context.Context, query string) (*Catalog, error) {
	res := &Catalog{}
	var err error
	if res.Philosophies, err = search[Philosophy](ctx, c.db, query); err != nil {
		return nil, err
	}
	if res.Religions, err = search[Religion](ctx, c.db, query); err != nil {
		return nil, err
	}
	if res.AstrologicalSystems, err = search[AstrologicalSystem](ctx, c.db, query); err != nil {
		return nil, err
	}
	return res, nil
}

func list[T any](ctx context.Context, db *gorm.DB, page Page) ([]T, error) {
	items := make([]T, 0)
	if err := page.apply(db.WithContext(ctx).Order("id ASC")).Find(&items).Error; err != nil {
		log.Error("failed to list reference records", "error", err)
		return nil, err
	}
	return items, nil
}

func get[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var item T
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		err = translateError(err)
		if err != ErrNotFound {
			log.Error("failed to get reference record", "error", err)
		}
		return nil, err
	}
	return &item, nil
}

// search uses ILIKE on postgres. SQLite only folds ASCII in LOWER and LIKE,
// so there the catalog is loaded and matched with unicode case folding.
func search[T any, PT interface {
	*T
	Tradition() *Tradition
}](ctx context.Context, db *gorm.DB, query string) ([]T, error) {
	items := make([]T, 0)
	tx := db.WithContext(ctx).Order("id ASC")
	if db.Dialector.Name() == "postgres" {
		pattern := "%" + escapeLike(query) + "%"
		tx = tx.Where(`name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if err := tx.Find(&items).Error; err != nil {
		log.Error("failed to search reference records", "error", err)
		return nil, err
	}
	if db.Dialector.Name() == "postgres" {
		return items, nil
	}

	needle := strings.ToLower(query)
	matches := make([]T, 0, len(items))
	for i := range items {
		t := PT(&items[i]).Tradition()
		if strings.Contains(strings.ToLower(t.Name), needle) || strings.Contains(strings.ToLower(t.Description), needle) {
			matches = append(matches, items[i])
		}
	}
	return matches, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
