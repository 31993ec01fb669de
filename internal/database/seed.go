package database

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedCatalog populates the reference tables.
// Idempotent: skips if any reference record already exists, unless force is set,
// in which case the reference tables are cleared first. Reports whether rows were written.
func (c *Client) SeedCatalog(ctx context.Context, force bool) (bool, error) {
	seeded := false
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Philosophy{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 && !force {
			log.Info("Reference catalog already seeded, skipping")
			return nil
		}

		if force {
			for _, model := range []any{&Philosophy{}, &Religion{}, &AstrologicalSystem{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("failed to clear reference table: %w", err)
				}
			}
		}

		philosophies := seedPhilosophies()
		if err := tx.Create(&philosophies).Error; err != nil {
			return fmt.Errorf("failed to seed philosophies: %w", err)
		}
		religions := seedReligions()
		if err := tx.Create(&religions).Error; err != nil {
			return fmt.Errorf("failed to seed religions: %w", err)
		}
		systems := seedAstrologicalSystems()
		if err := tx.Create(&systems).Error; err != nil {
			return fmt.Errorf("failed to seed astrological systems: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		log.Error("failed to seed reference catalog", "error", err)
		return false, err
	}
	return seeded, nil
}

func seedPhilosophies() []Philosophy {
	return []Philosophy{
		{
			Name:        "Stoicism",
			Description: "Ancient Greek philosophy focusing on personal ethics, rationality, and living in harmony with nature's laws. It teaches that the path to happiness is found in accepting the present moment as it is.",
			Origin:      "Ancient Greece",
			KeyPrinciples: datatypes.JSONSlice[string]{
				"Focus on what you can control",
				"Live in accordance with nature",
				"Practice self-discipline",
				"Maintain emotional equilibrium",
				"Virtue is the only true good",
			},
		},
		{
			Name:        "Taoism",
			Description: "Chinese philosophy and religion emphasizing living in harmony with the Tao (the Way). It promotes simplicity, spontaneity, and harmony with nature.",
			Origin:      "Ancient China",
			KeyPrinciples: datatypes.JSONSlice[string]{
				"Wu Wei (non-action)",
				"Balance of Yin and Yang",
				"Living in harmony with nature",
				"Simplicity and spontaneity",
				"The Tao is the source of all being",
			},
		},
		{
			Name:        "Vedanta",
			Description: "One of the six orthodox schools of Hindu philosophy, focusing on the nature of ultimate reality and self-realization.",
			Origin:      "Ancient India",
			KeyPrinciples: datatypes.JSONSlice[string]{
				"Brahman is the ultimate reality",
				"Atman is identical with Brahman",
				"The world is ultimately illusory (Maya)",
				"Liberation (Moksha) through self-knowledge",
				"Unity of all existence",
			},
		},
	}
}

func seedReligions() []Religion {
	return []Religion{
		{
			Name:        "Hinduism",
			Description: "The world's oldest living religion, emphasizing dharma (moral and social order), karma (action and consequence), and moksha (liberation).",
			Origin:      "Ancient India",
			SacredTexts: datatypes.JSONSlice[string]{"Vedas", "Upanishads", "Bhagavad Gita", "Puranas"},
			Practices:   datatypes.JSONSlice[string]{"Meditation", "Yoga", "Puja (worship)", "Pilgrimage", "Devotional singing"},
		},
		{
			Name:        "Buddhism",
			Description: "A path of spiritual development leading to insight into the true nature of reality, founded by Siddhartha Gautama.",
			Origin:      "Ancient India",
			SacredTexts: datatypes.JSONSlice[string]{"Tripitaka", "Dhammapada", "Heart Sutra", "Diamond Sutra"},
			Practices:   datatypes.JSONSlice[string]{"Meditation", "Mindfulness", "Ethical conduct", "Study of dharma", "Chanting"},
		},
		{
			Name:        "Sufism",
			Description: "The mystical dimension of Islam, focusing on direct personal experience of the Divine through love and devotion.",
			Origin:      "Medieval Islamic world",
			SacredTexts: datatypes.JSONSlice[string]{"Quran", "Masnavi", "Conference of the Birds", "Works of Ibn Arabi"},
			Practices:   datatypes.JSONSlice[string]{"Dhikr (remembrance)", "Sama (spiritual concert)", "Meditation", "Poetry recitation", "Whirling"},
		},
	}
}

func seedAstrologicalSystems() []AstrologicalSystem {
	return []AstrologicalSystem{
		{
			Name:        "Western Astrology",
			Origin:      "Ancient Mesopotamia and Greece",
			Description: "A system based on the tropical zodiac and planetary movements, focusing on psychological and predictive aspects.",
			KeyConcepts: datatypes.JSONSlice[string]{"Houses", "Aspects", "Planetary rulerships", "Elements and modalities", "Transit analysis"},
			ZodiacSigns: datatypes.JSONSlice[string]{
				"Aries", "Taurus", "Gemini", "Cancer",
				"Leo", "Virgo", "Libra", "Scorpio",
				"Sagittarius", "Capricorn", "Aquarius", "Pisces",
			},
		},
		{
			Name:        "Vedic Astrology (Jyotish)",
			Origin:      "Ancient India",
			Description: "Traditional Hindu system of astrology using the sidereal zodiac, focusing on karma and life purpose.",
			KeyConcepts: datatypes.JSONSlice[string]{
				"Nakshatras (lunar mansions)",
				"Dashas (planetary periods)",
				"Yogas (planetary combinations)",
				"Houses (Bhavas)",
				"Remedial measures",
			},
			ZodiacSigns: datatypes.JSONSlice[string]{
				"Mesha", "Vrishabha", "Mithuna", "Karka",
				"Simha", "Kanya", "Tula", "Vrishchika",
				"Dhanus", "Makara", "Kumbha", "Meena",
			},
		},
		{
			Name:        "Chinese Astrology",
			Origin:      "Ancient China",
			Description: "Based on cycles of years, months, and hours, incorporating elements and animal signs.",
			KeyConcepts: datatypes.JSONSlice[string]{"Animal signs", "Five Elements", "Yin and Yang", "Four Pillars", "Lucky elements"},
			ZodiacSigns: datatypes.JSONSlice[string]{
				"Rat", "Ox", "Tiger", "Rabbit",
				"Dragon", "Snake", "Horse", "Goat",
				"Monkey", "Rooster", "Dog", "Pig",
			},
		},
	}
}
