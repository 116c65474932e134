package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"maps"
	"time"

	"github.com/cenkalti/backoff/v5"

	"zet/internal/forum"
	"zet/internal/game"
	"zet/internal/protocol"
	"zet/internal/render"
	"zet/internal/report"
)

const (
	// StaleAfter is how long the thread may go without a bump.
	StaleAfter = 60 * time.Second
	// IterationDelay is the pause between two iterations.
	IterationDelay = 15 * time.Second
	// PostRetryDelay is the pause between two attempts to post.
	PostRetryDelay = 5 * time.Second
	// PostAttempts is how many times a post is tried.
	PostAttempts = 5
)

// ErrThreadNotSet is returned when the save has no board or thread.
var ErrThreadNotSet = errors.New("thread not set")

const bumpText = "Бамп"

// Forum reads and writes the game thread.
type Forum interface {
	FetchThread(ctx context.Context, board string, thread int) (*forum.Thread, error)
	Post(ctx context.Context, req forum.PostRequest) (*forum.PostResult, error)
	ThreadURL(board string, thread int) string
	SetSessionTokens(tokens map[string]string)
}

// Store persists the game state.
type Store interface {
	StoreSave(name string, state *game.GameState) error
}

// History keeps the posted reports.
type History interface {
	AddReport(saveName, board string, thread int, body string) error
}

// Renderer draws the images attached to posts.
type Renderer interface {
	MapImage(players []*game.Player) (*image.RGBA, error)
	PlayersImage(players []*game.Player) (*image.RGBA, error)
}

// Publisher streams updates to observers.
type Publisher interface {
	Publish(msgType protocol.MessageType, payload any) error
}

// Operator answers the questions the bot cannot decide alone.
type Operator interface {
	Ask(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
}

// Config holds the loop settings.
type Config struct {
	Save          string
	OpPost        string
	MakeRethreads bool

	// Zero values use the package defaults.
	IterationDelay time.Duration
	RetryDelay     time.Duration
}

// Deps are the collaborators of the loop. History, Publisher and Operator
// may be nil.
type Deps struct {
	Engine    *game.Engine
	Forum     Forum
	Store     Store
	Renderer  Renderer
	History   History
	Publisher Publisher
	Operator  Operator
}

// Bot plays one save in its thread.
type Bot struct {
	cfg       Config
	state     *game.GameState
	processor *Processor
	forum     Forum
	store     Store
	renderer  Renderer
	history   History
	publisher Publisher
	operator  Operator
	logger    *log.Logger
	now       func() time.Time
}

// New creates a bot for the loaded state.
func New(cfg Config, state *game.GameState, deps Deps, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.IterationDelay == 0 {
		cfg.IterationDelay = IterationDelay
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = PostRetryDelay
	}
	if state.SessionTokens == nil {
		state.SessionTokens = make(map[string]string)
	}
	deps.Forum.SetSessionTokens(state.SessionTokens)

	return &Bot{
		cfg:       cfg,
		state:     state,
		processor: NewProcessor(deps.Engine),
		forum:     deps.Forum,
		store:     deps.Store,
		renderer:  deps.Renderer,
		history:   deps.History,
		publisher: deps.Publisher,
		operator:  deps.Operator,
		logger:    logger,
		now:       time.Now,
	}
}

// State returns the committed game state.
func (b *Bot) State() *game.GameState {
	return b.state
}

// Run iterates until the context is cancelled. It returns ErrThreadNotSet
// when the operator declines to start a new thread.
func (b *Bot) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := b.Iterate(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrThreadNotSet):
			if err := b.startThread(ctx); err != nil {
				return err
			}
		case errors.Is(err, forum.ErrNetwork):
			b.logger.Printf("Connection problem: %v", err)
		case ctx.Err() != nil:
			return nil
		default:
			b.logger.Printf("Iteration failed: %v", err)
		}

		if err := wait(ctx, b.cfg.IterationDelay); err != nil {
			return nil
		}
	}
}

// Iterate runs one pass over the thread on a copy of the state and
// commits the copy if the pass succeeds.
func (b *Bot) Iterate(ctx context.Context) error {
	work := b.state.Clone()
	if err := b.iterate(ctx, work); err != nil {
		return err
	}
	b.commit(work)
	return nil
}

func (b *Bot) iterate(ctx context.Context, g *game.GameState) error {
	if g.Board == "" || g.Thread == 0 {
		return ErrThreadNotSet
	}

	// Posting is not interrupted half way.
	netCtx := context.WithoutCancel(ctx)

	b.logger.Printf("Fetching thread %s/%d", g.Board, g.Thread)
	thread, err := b.forum.FetchThread(netCtx, g.Board, g.Thread)
	if errors.Is(err, forum.ErrThreadNotFound) {
		b.logger.Printf("Thread %s/%d is gone, creating a new one", g.Board, g.Thread)
		return b.createThread(netCtx, g)
	}
	if err != nil {
		return err
	}

	if err := b.processor.Advance(ctx, g, thread.Posts); err != nil {
		return err
	}

	if !report.Paste(g.Report).Empty() {
		return b.postReport(netCtx, g)
	}

	if g.Cursor >= BumpLimit {
		return b.finishThread(ctx, g)
	}

	if latest, ok := thread.LatestBump(); ok && b.now().Sub(latest.Time) >= StaleAfter {
		b.post(netCtx, "Bump", forum.PostRequest{Board: g.Board, Thread: g.Thread, Comment: bumpText})
	}

	return nil
}

func (b *Bot) commit(g *game.GameState) {
	b.state = g
	if err := b.store.StoreSave(b.cfg.Save, g); err != nil {
		b.logger.Printf("Failed to store save %s: %v", b.cfg.Save, err)
	}
	if b.publisher == nil {
		return
	}
	url := ""
	if g.Thread != 0 {
		url = b.forum.ThreadURL(g.Board, g.Thread)
	}
	if err := b.publisher.Publish(protocol.TypeState, protocol.NewStatePayload(b.cfg.Save, g, url)); err != nil {
		b.logger.Printf("Failed to publish state: %v", err)
	}
}

// postReport posts the pending report with both images. The report stays
// pending when posting fails.
func (b *Bot) postReport(ctx context.Context, g *game.GameState) error {
	files, err := b.images(g, true)
	if err != nil {
		return err
	}

	body := report.Paste(g.Report).String()
	b.logger.Printf("Posting report:\n%s", body)

	req := forum.PostRequest{Board: g.Board, Thread: g.Thread, Comment: body, Files: files}
	if _, err := b.post(ctx, "Report", req); err != nil {
		return nil
	}
	g.Report = ""

	if b.history != nil {
		if err := b.history.AddReport(b.cfg.Save, g.Board, g.Thread, body); err != nil {
			b.logger.Printf("Failed to record report: %v", err)
		}
	}
	if b.publisher != nil {
		payload := protocol.ReportPayload{Save: b.cfg.Save, Board: g.Board, Thread: g.Thread, Body: body}
		if err := b.publisher.Publish(protocol.TypeReport, payload); err != nil {
			b.logger.Printf("Failed to publish report: %v", err)
		}
	}
	return nil
}

// finishThread closes a thread that reached the bump limit and moves the
// game to a new one.
func (b *Bot) finishThread(ctx context.Context, g *game.GameState) error {
	netCtx := context.WithoutCancel(ctx)

	if !g.BannerPosted {
		pending := g.Report
		paste := report.Paste(pending)
		paste.AddBumpLimit()
		g.Report = string(paste)
		if err := b.postReport(netCtx, g); err != nil {
			return err
		}
		if g.Report != "" {
			// The banner is added again on the next pass.
			g.Report = pending
			return nil
		}
		g.BannerPosted = true
	}

	if !b.cfg.MakeRethreads {
		b.logger.Printf("Thread %s/%d reached the bump limit", g.Board, g.Thread)
		g.Thread = 0
		return nil
	}

	if wait(ctx, b.cfg.RetryDelay) != nil {
		return nil
	}

	old := g.Thread
	if err := b.createThread(netCtx, g); err != nil {
		b.logger.Printf("Rethread failed: %v", err)
		return nil
	}

	if wait(ctx, b.cfg.RetryDelay) != nil {
		return nil
	}

	link := b.forum.ThreadURL(g.Board, g.Thread)
	announce := forum.PostRequest{
		Board:   g.Board,
		Thread:  old,
		Comment: "***" + link + "\n" + link + "\n" + link + "***",
	}
	b.post(netCtx, "Rethread announcement", announce)
	return nil
}

// createThread opens a new thread for the game. Countries without tiles
// and all roll bases are dropped first.
func (b *Bot) createThread(ctx context.Context, g *game.GameState) error {
	g.DropEmptyPlayers()
	g.ClearRollBases()

	files, err := b.images(g, len(g.Players) > 0)
	if err != nil {
		return err
	}

	req := forum.PostRequest{Board: g.Board, Comment: b.cfg.OpPost, Files: files}
	res, err := b.post(ctx, "Thread creation", req)
	if err != nil {
		return fmt.Errorf("create thread on %s: %w", g.Board, err)
	}

	g.Thread = res.Thread
	if g.Thread == 0 {
		g.Thread = res.Num
	}
	g.Cursor = 1
	g.BannerPosted = false

	if g.SessionTokens == nil {
		g.SessionTokens = make(map[string]string)
	}
	maps.Copy(g.SessionTokens, res.SessionTokens)
	b.forum.SetSessionTokens(g.SessionTokens)

	b.logger.Printf("Created thread %s", b.forum.ThreadURL(g.Board, g.Thread))
	return nil
}

// startThread asks the operator whether to open a thread for a save that
// has none.
func (b *Bot) startThread(ctx context.Context) error {
	if b.operator == nil {
		b.logger.Printf("Thread is not set for %s", b.cfg.Save)
		return ErrThreadNotSet
	}

	work := b.state.Clone()
	ok, err := b.operator.Confirm(fmt.Sprintf("Тред не задан. Создать новый? (доска - %q) ", work.Board))
	if err != nil || !ok {
		return ErrThreadNotSet
	}
	if work.Board == "" {
		board, err := b.operator.Ask("Доска: ")
		if err != nil || board == "" {
			return ErrThreadNotSet
		}
		work.Board = board
	}

	if err := b.createThread(context.WithoutCancel(ctx), work); err != nil {
		b.logger.Printf("Failed to start thread: %v", err)
		return nil
	}
	b.commit(work)
	return nil
}

// post sends a request, retrying with a constant delay. Failures are
// logged and returned.
func (b *Bot) post(ctx context.Context, what string, req forum.PostRequest) (*forum.PostResult, error) {
	res, err := backoff.Retry(ctx, func() (*forum.PostResult, error) {
		return b.forum.Post(ctx, req)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(b.cfg.RetryDelay)),
		backoff.WithMaxTries(PostAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			b.logger.Printf("%s failed: %v, retrying in %s", what, err, next)
		}),
	)
	if err != nil {
		b.logger.Printf("%s failed after %d attempts: %v", what, PostAttempts, err)
		return nil, err
	}
	b.logger.Printf("%s posted", what)
	return res, nil
}

// images renders the map and, if asked, the list of countries.
func (b *Bot) images(g *game.GameState, withPlayers bool) ([]forum.File, error) {
	mapImg, err := b.renderer.MapImage(g.Players)
	if err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	data, err := render.EncodePNG(mapImg)
	if err != nil {
		return nil, err
	}
	files := []forum.File{{Name: "map.png", Data: data}}

	if !withPlayers {
		return files, nil
	}
	playersImg, err := b.renderer.PlayersImage(g.Players)
	if err != nil {
		return nil, fmt.Errorf("render players: %w", err)
	}
	if data, err = render.EncodePNG(playersImg); err != nil {
		return nil, err
	}
	return append(files, forum.File{Name: "players.png", Data: data}), nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
