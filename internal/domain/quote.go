// Package domain contains core business entities and rules.
package domain

import (
	"math/rand/v2"
	"net/url"
	"strings"
)

// Quote is a single attributed line of dialogue.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// Text is the line itself.
	Text string

	// Character is the name of the speaker. It keys the character lookup.
	Character string

	// Show is the production the line comes from.
	Show string
}

// Character is the biographical record of a quote's speaker.
type Character struct {
	Name        string
	Birthday    string
	Occupations []string
	Images      []*url.URL
	Aliases     []string
	Status      string
	PortrayedBy string

	// Death is nil while the character is alive.
	Death *Death
}

// Death describes how a character died.
type Death struct {
	Character string
	Image     *url.URL
	Details   string
	LastWords string
}

// IsDead reports whether the character has a recorded death.
func (c *Character) IsDead() bool {
	return c.Death != nil
}

// RandomImage returns one of the character's images, or nil if there are none.
func (c *Character) RandomImage() *url.URL {
	if len(c.Images) == 0 {
		return nil
	}

	return c.Images[rand.IntN(len(c.Images))] //nolint:gosec // Display choice only
}

// ShowKey strips spaces and lower-cases a show name ("Better Call Saul" -> "bettercallsaul").
// Presentation layers use it to look up per-show assets.
func ShowKey(show string) string {
	return strings.ToLower(strings.ReplaceAll(show, " ", ""))
}
