package bot

import (
	"context"
	"errors"
	"image"
	"io"
	"log"
	"maps"
	"slices"
	"testing"
	"time"

	"zet/internal/forum"
	"zet/internal/game"
	"zet/internal/protocol"
	pkgmaps "zet/pkg/maps"
)

type fakeForum struct {
	threads    map[int]*forum.Thread
	fetchErr   error
	postErrs   []error
	posts      []forum.PostRequest
	nextThread int
	newTokens  map[string]string
	tokens     map[string]string
	onPost     func(req forum.PostRequest)
}

func newFakeForum() *fakeForum {
	return &fakeForum{threads: make(map[int]*forum.Thread), nextThread: 200}
}

func (f *fakeForum) FetchThread(ctx context.Context, board string, thread int) (*forum.Thread, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	t, ok := f.threads[thread]
	if !ok {
		return nil, forum.ErrThreadNotFound
	}
	return t, nil
}

func (f *fakeForum) Post(ctx context.Context, req forum.PostRequest) (*forum.PostResult, error) {
	f.posts = append(f.posts, req)
	if f.onPost != nil {
		f.onPost(req)
	}
	if len(f.postErrs) > 0 {
		err := f.postErrs[0]
		f.postErrs = f.postErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if req.Thread == 0 {
		f.nextThread++
		return &forum.PostResult{Num: f.nextThread, Thread: f.nextThread, SessionTokens: f.newTokens}, nil
	}
	return &forum.PostResult{Num: 9999, Thread: req.Thread}, nil
}

func (f *fakeForum) ThreadURL(board string, thread int) string {
	return forum.ThreadURL(forum.DefaultBaseURL, board, thread)
}

func (f *fakeForum) SetSessionTokens(tokens map[string]string) {
	f.tokens = maps.Clone(tokens)
}

type fakeStore struct {
	saved []*game.GameState
}

func (s *fakeStore) StoreSave(name string, state *game.GameState) error {
	s.saved = append(s.saved, state)
	return nil
}

type fakeHistory struct {
	bodies []string
}

func (h *fakeHistory) AddReport(saveName, board string, thread int, body string) error {
	h.bodies = append(h.bodies, body)
	return nil
}

type fakePublisher struct {
	types []protocol.MessageType
}

func (p *fakePublisher) Publish(msgType protocol.MessageType, payload any) error {
	p.types = append(p.types, msgType)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) MapImage(players []*game.Player) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (fakeRenderer) PlayersImage(players []*game.Player) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

type fakeOperator struct {
	confirm bool
	answer  string
	asked   []string
}

func (o *fakeOperator) Ask(prompt string) (string, error) {
	o.asked = append(o.asked, prompt)
	return o.answer, nil
}

func (o *fakeOperator) Confirm(prompt string) (bool, error) {
	o.asked = append(o.asked, prompt)
	return o.confirm, nil
}

type failingModerator struct{}

func (failingModerator) Moderate(ctx context.Context, name string) (game.Verdict, error) {
	return game.Verdict{}, errors.New("console closed")
}

type harness struct {
	bot       *Bot
	forum     *fakeForum
	store     *fakeStore
	history   *fakeHistory
	publisher *fakePublisher
}

func newHarness(t *testing.T, state *game.GameState, cfg Config, moderator game.Moderator) *harness {
	t.Helper()
	catalog, err := pkgmaps.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	h := &harness{
		forum:     newFakeForum(),
		store:     &fakeStore{},
		history:   &fakeHistory{},
		publisher: &fakePublisher{},
	}
	cfg.Save = "test"
	cfg.IterationDelay = time.Millisecond
	cfg.RetryDelay = time.Millisecond
	h.bot = New(cfg, state, Deps{
		Engine:    game.NewEngine(catalog, moderator),
		Forum:     h.forum,
		Store:     h.store,
		Renderer:  fakeRenderer{},
		History:   h.history,
		Publisher: h.publisher,
	}, log.New(io.Discard, "", 0))
	return h
}

func activeGame() *game.GameState {
	g := game.NewGame("b")
	g.Thread = 100
	g.Cursor = 1
	return g
}

func gameThread(posts ...forum.Post) *forum.Thread {
	now := time.Now()
	all := []forum.Post{{Num: 1000, Position: 1, Comment: "ОП", Time: now}}
	for i, p := range posts {
		p.Position = i + 2
		if p.Time.IsZero() {
			p.Time = now
		}
		all = append(all, p)
	}
	return &forum.Thread{Board: "b", Num: 100, Posts: all}
}

const firstReport = ">>1010 %%страна добавлена%%\n\n>>1011 **\"Орда\" создаётся на 5A**"

func TestIterateReportsMoves(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, nil)
	h.forum.threads[100] = gameThread(
		forum.Post{Num: 1010, Comment: "роллбаза<br>Орда<br>#ff0000"},
		forum.Post{Num: 1011, Comment: "&gt;&gt;1010 ролл 5a"},
	)

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	if len(h.forum.posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(h.forum.posts))
	}
	post := h.forum.posts[0]
	if post.Thread != 100 || post.Comment != firstReport {
		t.Errorf("Unexpected report post %d: %q", post.Thread, post.Comment)
	}
	if len(post.Files) != 2 || post.Files[0].Name != "map.png" || post.Files[1].Name != "players.png" {
		t.Errorf("Expected map and players images, got %v", post.Files)
	}

	state := h.bot.State()
	if state.Cursor != 3 || state.Report != "" {
		t.Errorf("Expected cursor 3 and no pending report, got %d %q", state.Cursor, state.Report)
	}
	if owner := state.Owner("5a"); owner == nil || owner.Name != "Орда" {
		t.Errorf("Expected Орда to own 5a, got %v", owner)
	}
	if len(h.store.saved) != 1 {
		t.Errorf("Expected 1 save, got %d", len(h.store.saved))
	}
	if len(h.history.bodies) != 1 || h.history.bodies[0] != firstReport {
		t.Errorf("Unexpected history %v", h.history.bodies)
	}
	want := []protocol.MessageType{protocol.TypeReport, protocol.TypeState}
	if !slices.Equal(h.publisher.types, want) {
		t.Errorf("Expected %v published, got %v", want, h.publisher.types)
	}

	// Nothing new on the second pass.
	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 1 {
		t.Errorf("Expected no new posts, got %d", len(h.forum.posts))
	}
	if h.bot.State().Cursor != 3 {
		t.Errorf("Cursor moved to %d", h.bot.State().Cursor)
	}
}

func TestIterateKeepsReportWhenPostFails(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, nil)
	h.forum.threads[100] = gameThread(
		forum.Post{Num: 1010, Comment: "роллбаза<br>Орда<br>#ff0000"},
	)
	fail := errors.New("captcha")
	h.forum.postErrs = []error{fail, fail, fail, fail, fail}

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != PostAttempts {
		t.Errorf("Expected %d attempts, got %d", PostAttempts, len(h.forum.posts))
	}
	state := h.bot.State()
	if state.Cursor != 2 || state.Report == "" {
		t.Errorf("Expected cursor 2 with pending report, got %d %q", state.Cursor, state.Report)
	}

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if h.bot.State().Report != "" {
		t.Errorf("Expected report posted, still pending %q", h.bot.State().Report)
	}
	if len(h.history.bodies) != 1 {
		t.Errorf("Expected 1 recorded report, got %d", len(h.history.bodies))
	}
}

func TestIterateDiscardsFailedPass(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, failingModerator{})
	h.forum.threads[100] = gameThread(
		forum.Post{Num: 1010, Comment: "роллбаза<br>Орда<br>#ff0000"},
	)

	if err := h.bot.Iterate(context.Background()); err == nil {
		t.Fatal("Expected moderation error")
	}
	if h.bot.State().Cursor != 1 || len(h.bot.State().Players) != 0 {
		t.Errorf("State changed after a failed pass: %+v", h.bot.State())
	}
	if len(h.store.saved) != 0 {
		t.Errorf("Expected no save, got %d", len(h.store.saved))
	}
}

func TestIterateNetworkError(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, nil)
	h.forum.fetchErr = forum.ErrNetwork

	if err := h.bot.Iterate(context.Background()); !errors.Is(err, forum.ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}

func TestIterateThreadNotSet(t *testing.T) {
	h := newHarness(t, game.NewGame("b"), Config{}, nil)

	if err := h.bot.Iterate(context.Background()); !errors.Is(err, ErrThreadNotSet) {
		t.Errorf("Expected ErrThreadNotSet, got %v", err)
	}
}

func TestIterateCreatesMissingThread(t *testing.T) {
	g := activeGame()
	g.SessionTokens["op_b_100"] = "old"
	idle := game.NewPlayer("Пустая", "#00ff00")
	g.AddPlayer(idle)
	g.AddRollBase(50, idle)

	h := newHarness(t, g, Config{OpPost: "Новая партия"}, nil)
	h.forum.newTokens = map[string]string{"op_b_201": "new"}

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	if len(h.forum.posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(h.forum.posts))
	}
	op := h.forum.posts[0]
	if op.Thread != 0 || op.Comment != "Новая партия" || len(op.Files) != 1 {
		t.Errorf("Unexpected OP post: %+v", op)
	}

	state := h.bot.State()
	if state.Thread != 201 || state.Cursor != 1 {
		t.Errorf("Expected thread 201 at cursor 1, got %d at %d", state.Thread, state.Cursor)
	}
	if len(state.Players) != 0 || len(state.RollBases) != 0 {
		t.Errorf("Expected empty countries and roll bases dropped, got %v %v", state.Players, state.RollBases)
	}
	want := map[string]string{"op_b_100": "old", "op_b_201": "new"}
	if !maps.Equal(state.SessionTokens, want) || !maps.Equal(h.forum.tokens, want) {
		t.Errorf("Expected merged tokens %v, got %v and %v", want, state.SessionTokens, h.forum.tokens)
	}
}

func TestIterateBumpLimitRethread(t *testing.T) {
	g := activeGame()
	g.Cursor = BumpLimit
	h := newHarness(t, g, Config{MakeRethreads: true}, nil)
	h.forum.threads[100] = gameThread()

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	if len(h.forum.posts) != 3 {
		t.Fatalf("Expected banner, OP and announcement, got %d posts", len(h.forum.posts))
	}
	banner, op, announce := h.forum.posts[0], h.forum.posts[1], h.forum.posts[2]
	if banner.Thread != 100 || len(banner.Files) != 2 {
		t.Errorf("Unexpected banner post: %+v", banner)
	}
	if op.Thread != 0 {
		t.Errorf("Expected a new thread, got reply to %d", op.Thread)
	}
	link := "https://2ch.hk/b/res/201.html"
	if announce.Thread != 100 || announce.Comment != "***"+link+"\n"+link+"\n"+link+"***" {
		t.Errorf("Unexpected announcement: %+v", announce)
	}

	state := h.bot.State()
	if state.Thread != 201 || state.Cursor != 1 || state.Report != "" {
		t.Errorf("Unexpected state after rethread: thread %d cursor %d report %q", state.Thread, state.Cursor, state.Report)
	}
}

func TestIterateBumpLimitWithoutRethread(t *testing.T) {
	g := activeGame()
	g.Cursor = BumpLimit
	h := newHarness(t, g, Config{}, nil)
	h.forum.threads[100] = gameThread()

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 1 {
		t.Errorf("Expected only the banner, got %d posts", len(h.forum.posts))
	}
	if h.bot.State().Thread != 0 {
		t.Errorf("Expected the thread to be cleared, got %d", h.bot.State().Thread)
	}
}

func TestBumpLimitBannerSurvivesInterruptedRethread(t *testing.T) {
	g := activeGame()
	g.Cursor = BumpLimit
	h := newHarness(t, g, Config{MakeRethreads: true}, nil)
	h.forum.threads[100] = gameThread()

	ctx, cancel := context.WithCancel(context.Background())
	h.forum.onPost = func(forum.PostRequest) { cancel() }

	if err := h.bot.Iterate(ctx); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 1 {
		t.Fatalf("Expected only the banner before the stop, got %d posts", len(h.forum.posts))
	}
	state := h.bot.State()
	if state.Thread != 100 || !state.BannerPosted {
		t.Fatalf("Expected thread 100 with the banner marked, got %d %v", state.Thread, state.BannerPosted)
	}

	// After a restart the rethread resumes without a second banner.
	h.forum.onPost = nil
	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 3 {
		t.Fatalf("Expected OP and announcement, got %d posts in total", len(h.forum.posts))
	}
	if op := h.forum.posts[1]; op.Thread != 0 {
		t.Errorf("Expected a new thread, got a reply to %d", op.Thread)
	}
	if announce := h.forum.posts[2]; announce.Thread != 100 {
		t.Errorf("Expected the announcement in thread 100, got %d", announce.Thread)
	}
	state = h.bot.State()
	if state.Thread != 201 || state.BannerPosted {
		t.Errorf("Expected thread 201 with the banner cleared, got %d %v", state.Thread, state.BannerPosted)
	}
}

func TestIterateBumpsStaleThread(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, nil)
	old := time.Now().Add(-2 * time.Minute)
	thread := gameThread(forum.Post{Num: 1001, Comment: "сажа", Sage: true})
	thread.Posts[0].Time = old
	h.forum.threads[100] = thread

	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 1 || h.forum.posts[0].Comment != "Бамп" || h.forum.posts[0].Thread != 100 {
		t.Errorf("Expected one bump, got %+v", h.forum.posts)
	}

	h.forum.posts = nil
	thread.Posts[0].Time = time.Now()
	if err := h.bot.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if len(h.forum.posts) != 0 {
		t.Errorf("Expected no bump for a fresh thread, got %+v", h.forum.posts)
	}
}

func TestStartThread(t *testing.T) {
	h := newHarness(t, game.NewGame(""), Config{OpPost: "ОП"}, nil)
	op := &fakeOperator{confirm: true, answer: "vg"}
	h.bot.operator = op

	if err := h.bot.startThread(context.Background()); err != nil {
		t.Fatalf("startThread: %v", err)
	}
	state := h.bot.State()
	if state.Board != "vg" || state.Thread != 201 {
		t.Errorf("Expected thread 201 on vg, got %s/%d", state.Board, state.Thread)
	}
	if len(h.store.saved) != 1 {
		t.Errorf("Expected the new thread to be saved")
	}
}

func TestRunStopsWhenOperatorDeclines(t *testing.T) {
	h := newHarness(t, game.NewGame("b"), Config{}, nil)
	h.bot.operator = &fakeOperator{confirm: false}

	if err := h.bot.Run(context.Background()); !errors.Is(err, ErrThreadNotSet) {
		t.Errorf("Expected ErrThreadNotSet, got %v", err)
	}
	if len(h.forum.posts) != 0 {
		t.Errorf("Expected no posts, got %d", len(h.forum.posts))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, activeGame(), Config{}, nil)
	h.forum.threads[100] = gameThread()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.bot.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
