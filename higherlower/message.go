package higherlower

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
)

// Component custom IDs.
const (
	Higher  = "hl_higher"
	Lower   = "hl_lower"
	Restart = "hl_restart"
)

// TTL is how long a game waits for a guess.
const TTL = 2 * time.Minute

// Scores records highscores.
type Scores interface {
	HigherLowerHighscore(ctx context.Context, discord, game string) (int, error)
	RecordHigherLower(ctx context.Context, discord, game string, score int) (bool, error)
}

// Message is an active message playing a game.
type Message struct {
	log    *slog.Logger
	game   *Game
	scores Scores
	owner  string
	best   int
	// newBest is whether the finished game set a highscore.
	newBest bool
	// result is a line about the last guess.
	result string
}

// NewMessage creates a game message for a player.
// Errors which don't interrupt the game are logged to log.
func NewMessage(ctx context.Context, log *slog.Logger, game *Game, scores Scores, owner string) (*Message, error) {
	best, err := scores.HigherLowerHighscore(ctx, owner, game.Name())
	if err != nil {
		return nil, fmt.Errorf("couldn't get highscore: %w", err)
	}
	m := Message{
		log:    log,
		game:   game,
		scores: scores,
		owner:  owner,
		best:   best,
	}
	return &m, nil
}

const (
	colorPlaying = 0x66ccff
	colorRight   = 0x55dd55
	colorWrong   = 0xdd5555
)

// Build renders the two entries, or the result of a finished game.
func (m *Message) Build(ctx context.Context) (*active.Page, error) {
	g := m.game
	prev, next := g.Previous(), g.Next()
	e := &discordgo.MessageEmbed{
		Title: "Higher or lower?",
		Color: colorPlaying,
		Fields: []*discordgo.MessageEmbedField{
			{Name: prev.Title, Value: prev.Detail + "\n**" + g.Format(prev.Value) + "**"},
			{Name: next.Title, Value: next.Detail + "\n**???**"},
		},
		Image:  &discordgo.MessageEmbedImage{URL: next.Image},
		Footer: &discordgo.MessageEmbedFooter{Text: m.footer()},
	}
	if m.result != "" {
		e.Description = m.result
		e.Color = colorRight
	}
	if g.Over() {
		e.Color = colorWrong
		e.Description = "Wrong! Your streak was " + strconv.Itoa(g.Streak()) + "."
		if m.newBest {
			e.Description += " That's a new best!"
		}
		e.Fields[1].Value = next.Detail + "\n**" + g.Format(next.Value) + "**"
	}
	p := active.Page{
		Embeds:     []*discordgo.MessageEmbed{e},
		Components: m.buttons(),
	}
	return &p, nil
}

func (m *Message) footer() string {
	return "Streak: " + strconv.Itoa(m.game.Streak()) + " • Best: " + strconv.Itoa(m.best)
}

func (m *Message) buttons() []discordgo.MessageComponent {
	if m.game.Over() {
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Play again", Style: discordgo.PrimaryButton, CustomID: Restart},
			}},
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Higher", Style: discordgo.SuccessButton, CustomID: Higher},
			discordgo.Button{Label: "Lower", Style: discordgo.DangerButton, CustomID: Lower},
		}},
	}
}

// Component handles guesses and restarts.
func (m *Message) Component(ctx context.Context, ev *active.Event) (active.Result, error) {
	switch ev.CustomID {
	case Higher, Lower:
		if m.game.Over() {
			return active.Ignored(), nil
		}
		prev, next := m.game.Previous(), m.game.Next()
		ok, err := m.game.Guess(ctx, ev.CustomID == Higher)
		if err != nil {
			return active.Result{}, err
		}
		if !ok {
			m.result = ""
			if err := m.record(ctx); err != nil {
				// The game is over regardless. Show it.
				m.log.ErrorContext(ctx, "couldn't record higher/lower streak", slog.String("game", m.game.Name()), slog.Any("err", err))
			}
			return active.Updated(), nil
		}
		m.result = fmt.Sprintf("Correct! %s had %s, %s had %s.", next.Title, m.game.Format(next.Value), prev.Title, m.game.Format(prev.Value))
		return active.Updated(), nil
	case Restart:
		if !m.game.Over() {
			return active.Ignored(), nil
		}
		if err := m.game.Restart(ctx); err != nil {
			return active.Result{}, err
		}
		m.result, m.newBest = "", false
		return active.Updated(), nil
	default:
		return active.Ignored(), nil
	}
}

// record saves the streak of a finished game.
func (m *Message) record(ctx context.Context) error {
	s := m.game.Streak()
	isnew, err := m.scores.RecordHigherLower(ctx, m.owner, m.game.Name(), s)
	if err != nil {
		return fmt.Errorf("couldn't record streak: %w", err)
	}
	if isnew {
		m.best = s
	}
	m.newBest = isnew
	return nil
}

// Modal ignores modals; games have none.
func (m *Message) Modal(ctx context.Context, ev *active.Event) (active.Result, error) {
	return active.Ignored(), nil
}

// Expire records the streak of an abandoned game.
func (m *Message) Expire(ctx context.Context) (*active.Page, error) {
	if !m.game.Over() && m.game.Streak() > 0 {
		if err := m.record(ctx); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (m *Message) Owner() string { return m.owner }

func (m *Message) TTL() time.Duration { return TTL }
