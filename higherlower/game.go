// Package higherlower implements a game of guessing whether the next entry
// has a higher or lower value than the previous one.
package higherlower

import (
	"context"
	"errors"
	"fmt"
)

// Entry is one thing to compare.
type Entry struct {
	// Title names the entry, e.g. a player and a map.
	Title string
	// Detail describes the entry without revealing its value.
	Detail string
	// Image is a URL of an image to show with the entry.
	Image string
	// Key identifies the entry so that a game does not repeat it back to back.
	Key string
	// Value is the compared value.
	Value float64
}

// Source produces entries for a game.
type Source interface {
	// Name names the game variant, e.g. "pp". Highscores are kept per variant.
	Name() string
	// Next produces a random entry.
	Next(ctx context.Context) (*Entry, error)
	// Format formats an entry's value.
	Format(v float64) string
}

// ErrOver is returned when guessing in a game that has ended.
var ErrOver = errors.New("game over")

// maxDraws limits attempts to draw an entry different from the previous one.
const maxDraws = 5

// Game is the state of one game.
type Game struct {
	src    Source
	prev   *Entry
	next   *Entry
	streak int
	over   bool
}

// New starts a game drawing from src.
func New(ctx context.Context, src Source) (*Game, error) {
	g := &Game{src: src}
	if err := g.Restart(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// Restart starts over with fresh entries and no streak.
func (g *Game) Restart(ctx context.Context) error {
	prev, err := g.src.Next(ctx)
	if err != nil {
		return fmt.Errorf("couldn't get first entry: %w", err)
	}
	next, err := g.draw(ctx, prev)
	if err != nil {
		return err
	}
	g.prev, g.next, g.streak, g.over = prev, next, 0, false
	return nil
}

// draw gets an entry different from prev.
func (g *Game) draw(ctx context.Context, prev *Entry) (*Entry, error) {
	for range maxDraws {
		e, err := g.src.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("couldn't get next entry: %w", err)
		}
		if e.Key != prev.Key {
			return e, nil
		}
	}
	return nil, fmt.Errorf("couldn't find an entry different from %q", prev.Key)
}

// Guess guesses whether the next entry's value is higher than the previous
// one's. Equal values count as correct for either guess. A wrong guess ends
// the game.
func (g *Game) Guess(ctx context.Context, higher bool) (bool, error) {
	if g.over {
		return false, ErrOver
	}
	ok := g.next.Value == g.prev.Value || (g.next.Value > g.prev.Value) == higher
	if !ok {
		g.over = true
		return false, nil
	}
	e, err := g.draw(ctx, g.next)
	if err != nil {
		return true, err
	}
	g.prev, g.next = g.next, e
	g.streak++
	return true, nil
}

// Name names the game variant.
func (g *Game) Name() string { return g.src.Name() }

// Previous returns the entry whose value is shown.
func (g *Game) Previous() *Entry { return g.prev }

// Next returns the entry whose value is guessed.
func (g *Game) Next() *Entry { return g.next }

// Streak returns the number of correct guesses.
func (g *Game) Streak() int { return g.streak }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }

// Format formats a value.
func (g *Game) Format(v float64) string { return g.src.Format(v) }
