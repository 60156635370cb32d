package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type command struct {
	run func(ctx context.Context, a *app, args []string) error

	// standalone commands run without configuration or a store.
	standalone func(args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"dashboard":    {run: dashboardCmd},
	"weekly":       {run: weeklyCmd},
	"top":          {run: topCmd},
	"achievements": {run: achievementsCmd},
	"session":      {run: sessionCmd},
	"word":         {run: wordCmd},
	"sentence":     {run: sentenceCmd},
	"story":        {run: storyCmd},
	"quiz":         {run: quizCmd},
	"stars":        {run: starsCmd},
	"reset":        {run: resetCmd},
	"hash-pin":     {standalone: hashPinCmd},
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORTS
// ══════════════════════════════════════════════════════════════════════════════

func dashboardCmd(ctx context.Context, a *app, args []string) error {
	if err := noFlags("dashboard", args); err != nil {
		return err
	}
	return a.print(a.engine.Dashboard(ctx))
}

func weeklyCmd(ctx context.Context, a *app, args []string) error {
	if err := noFlags("weekly", args); err != nil {
		return err
	}
	stats, err := a.engine.Usage().WeeklyStats(ctx)
	if err != nil {
		return err
	}
	return a.print(stats)
}

func topCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("top")
	n := fs.Int("n", a.cfg.Gamification.TopWordsLimit, "number of words")
	if err := parse(fs, args); err != nil {
		return err
	}

	top, err := a.engine.Usage().TopUsed(ctx, *n)
	if err != nil {
		return err
	}
	return a.print(top)
}

func achievementsCmd(ctx context.Context, a *app, args []string) error {
	if err := noFlags("achievements", args); err != nil {
		return err
	}
	catalog, err := a.engine.Achievements().Catalog(ctx)
	if err != nil {
		return err
	}
	return a.print(catalog)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITIES
// ══════════════════════════════════════════════════════════════════════════════

func sessionCmd(ctx context.Context, a *app, args []string) error {
	if err := noFlags("session", args); err != nil {
		return err
	}
	return a.print(a.engine.StartSession(ctx))
}

func wordCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("word")
	id := fs.String("id", "", "vocabulary item id (required)")
	label := fs.String("label", "", "display label, defaults to the id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("%w: word: -id is required", errUsage)
	}
	if *label == "" {
		*label = *id
	}
	return a.print(a.engine.WordSpoken(ctx, *id, *label))
}

func sentenceCmd(ctx context.Context, a *app, args []string) error {
	if err := noFlags("sentence", args); err != nil {
		return err
	}
	return a.print(a.engine.SentenceFormed(ctx))
}

func storyCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("story")
	id := fs.String("id", "", "story id (required)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("%w: story: -id is required", errUsage)
	}
	return a.print(a.engine.StoryCompleted(ctx, *id))
}

func quizCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("quiz")
	wrong := fs.Bool("wrong", false, "the answer was wrong")
	if err := parse(fs, args); err != nil {
		return err
	}
	return a.print(a.engine.QuizAnswered(ctx, !*wrong))
}

func starsCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("stars")
	amount := fs.Int("amount", 0, "stars to credit (required, positive)")
	reason := fs.String("reason", "bonus", "reason recorded with the credit")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *amount <= 0 {
		return fmt.Errorf("%w: stars: -amount must be positive", errUsage)
	}
	return a.print(a.engine.AddStars(ctx, *amount, *reason))
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMINISTRATION
// ══════════════════════════════════════════════════════════════════════════════

func resetCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("reset")
	pin := fs.String("pin", "", "parent PIN")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := checkPIN(a.cfg.Gamification.ParentPINHash, *pin); err != nil {
		return err
	}
	if err := a.engine.ResetProfile(ctx); err != nil {
		return err
	}

	a.log.Info("profile reset", "profile_id", a.cfg.Gamification.ProfileID)
	fmt.Fprintln(a.out, "profile reset")
	return nil
}

func hashPinCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("hash-pin")
	fs.SetOutput(stderr)
	pin := fs.String("pin", "", "PIN to hash (4-12 digits)")
	if err := parse(fs, args); err != nil {
		return err
	}

	hash, err := hashPIN(*pin)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return fmt.Errorf("%w: %s", errUsage, fs.Name())
		}
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s: unexpected arguments %v", errUsage, fs.Name(), fs.Args())
	}
	return nil
}

func noFlags(name string, args []string) error {
	return parse(newFlagSet(name), args)
}
