// Command zet manages game saves and runs the thread bot.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.design/x/clipboard"

	"zet/internal/config"
	"zet/internal/database"
	"zet/internal/game"
)

const usage = `usage: zet <command> [flags] [name]

commands:
  all                     list saves
  new <name> [-b board]   create a save
  del <name>              delete a save
  set <name> -t <url>     point a save at a thread
  run <name>              play the save
  report <name> [-copy]   show the pending report
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "all":
		err = allCmd(args)
	case "new":
		err = newCmd(args)
	case "del":
		err = delCmd(args)
	case "set":
		err = setCmd(args)
	case "run":
		err = runCmd(args)
	case "report":
		err = reportCmd(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// parseArgs accepts the save name before or after the flags.
func parseArgs(fs *flag.FlagSet, args []string) (string, error) {
	name := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if name == "" {
		name = fs.Arg(0)
	}
	return name, nil
}

func openDB(path string) (config.Config, *database.DB, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	db, err := database.New(cfg.SavesPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func allCmd(args []string) error {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	_ = fs.Parse(args)

	_, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	saves, err := db.ListSaves()
	if err != nil {
		return err
	}
	if len(saves) == 0 {
		fmt.Println("no saves")
		return nil
	}
	for _, s := range saves {
		thread := "-"
		if s.Thread != 0 {
			thread = fmt.Sprintf("/%s/%d", s.Board, s.Thread)
		}
		fmt.Printf("%-20s %-16s players=%d updated=%s\n", s.Name, thread, s.Players, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func newCmd(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	board := fs.String("b", "", "board the game is played on")
	name, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("missing save name")
	}

	_, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateSave(name, game.NewGame(*board)); err != nil {
		return err
	}
	fmt.Printf("created %s\n", name)
	return nil
}

func delCmd(args []string) error {
	fs := flag.NewFlagSet("del", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	name, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("missing save name")
	}

	_, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteSave(name); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", name)
	return nil
}

func setCmd(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	link := fs.String("t", "", "thread url, e.g. https://2ch.hk/b/res/123.html")
	name, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("missing save name")
	}
	if *link == "" {
		return errors.New("missing -t")
	}

	board, thread, err := parseThreadURL(*link)
	if err != nil {
		return err
	}

	_, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.LoadSave(name)
	if err != nil {
		return err
	}
	state.Board = board
	state.Thread = thread
	state.Cursor = 1
	state.BannerPosted = false

	if err := db.StoreSave(name, state); err != nil {
		return err
	}
	fmt.Printf("%s now plays /%s/%d\n", name, board, thread)
	return nil
}

func reportCmd(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", "zet.yaml", "config file")
	copyOut := fs.Bool("copy", false, "copy the pending report to the clipboard")
	history := fs.Int("history", 0, "also print this many posted reports")
	name, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("missing save name")
	}

	_, db, err := openDB(*cfgPath)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.LoadSave(name)
	if err != nil {
		return err
	}

	pending := strings.TrimRight(state.Report, "\n")
	if pending == "" {
		fmt.Println("no pending report")
	} else {
		fmt.Println(pending)
	}

	if *history > 0 {
		reports, err := db.GetReports(name, *history)
		if err != nil {
			return err
		}
		for _, r := range reports {
			fmt.Printf("\n--- /%s/%d %s\n%s\n", r.Board, r.Thread, r.PostedAt.Format("2006-01-02 15:04"), r.Body)
		}
	}

	if *copyOut && pending != "" {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		clipboard.Write(clipboard.FmtText, []byte(pending))
		fmt.Println("copied to clipboard")
	}
	return nil
}

var threadPath = regexp.MustCompile(`^/([^/]+)/res/(\d+)\.html$`)

// parseThreadURL extracts the board and thread number from a thread link.
func parseThreadURL(link string) (string, int, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", 0, fmt.Errorf("bad thread url: %w", err)
	}
	m := threadPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", 0, fmt.Errorf("bad thread url %q: want /{board}/res/{thread}.html", link)
	}
	thread, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("bad thread number %q: %w", m[2], err)
	}
	return m[1], thread, nil
}
