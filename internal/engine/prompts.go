package engine

import (
	"fmt"
	"strings"

	"github.com/jon4hz/astroadvisor/internal/database"
)

const (
	advicePersona      = "You are a knowledgeable advisor combining astrological and spiritual wisdom."
	quickAdvicePersona = "You are a knowledgeable spiritual advisor combining astrological wisdom with philosophical insights."
)

func birthDataPrompt(in BirthData) string {
	birthTime := "Not provided"
	if in.BirthTime != nil && *in.BirthTime != "" {
		birthTime = *in.BirthTime
	}

	var b strings.Builder
	b.WriteString("Provide brief astrological and spiritual advice for:\n")
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	fmt.Fprintf(&b, "Birth Date: %s\n", in.BirthDate)
	fmt.Fprintf(&b, "Birth Time: %s\n", birthTime)
	fmt.Fprintf(&b, "Location: %s\n", in.Location)
	return b.String()
}

func advicePrompt(in BirthData) string {
	return birthDataPrompt(in)
}

func quickAdvicePrompt(in BirthData) string {
	var b strings.Builder
	b.WriteString(birthDataPrompt(in))
	b.WriteString("\nPlease provide a detailed reading including:\n")
	b.WriteString("1. General Astrological Insights\n")
	b.WriteString("2. Personal Growth Opportunities\n")
	b.WriteString("3. Spiritual Guidance\n")
	return b.String()
}

// guruPersona describes the tradition the guru speaks for.
func guruPersona(t *database.Tradition) string {
	origin := t.Origin
	if origin == "" {
		origin = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a wise teacher representing %s.\n", t.Name)
	b.WriteString("Key details about this tradition:\n")
	fmt.Fprintf(&b, "- Description: %s\n", t.Description)
	fmt.Fprintf(&b, "- Origin: %s\n", origin)
	if len(t.Traits) > 0 {
		fmt.Fprintf(&b, "\n%s: %s", t.TraitLabel, strings.Join(t.Traits, ", "))
	}
	return b.String()
}
