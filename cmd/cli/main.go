package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/app"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
)

const usage = "expected 'export', 'import' or 'reserved' subcommands"

// Export is the portable form of one owner's page.
type Export struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	AvatarRef   string       `json:"avatar_ref,omitempty"`
	Links       []ExportLink `json:"links"`
}

// ExportLink omits ids and positions; order is carried by the slice.
type ExportLink struct {
	Title  string `json:"title"`
	Target string `json:"target"`
	Icon   string `json:"icon,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, "text")
	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := run(ctx, a, logger, os.Args[1:], os.Stdout); err != nil {
		logger.Error(ctx, "command failed", "command", os.Args[1], "error", err)
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, logger logging.Logger, args []string, out io.Writer) error {
	switch args[0] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		owner := fs.String("owner", "", "owner id to export")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *owner == "" {
			return errors.New("export: -owner is required")
		}
		return doExport(ctx, a, *owner, out)
	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		owner := fs.String("owner", "", "owner id to import into")
		file := fs.String("file", "", "JSON file to import")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *owner == "" || *file == "" {
			return errors.New("import: -owner and -file are required")
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		return doImport(ctx, a, logger, *owner, f)
	case "reserved":
		for _, name := range a.Registry.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	default:
		return errors.New(usage)
	}
}

func doExport(ctx context.Context, a *app.App, ownerID string, out io.Writer) error {
	profile, err := a.Profiles.Get(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	links, err := a.Links.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}

	exp := Export{
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Bio:         profile.Bio,
		AvatarRef:   profile.AvatarRef,
		Links:       make([]ExportLink, 0, len(links)),
	}
	for _, l := range links {
		exp.Links = append(exp.Links, ExportLink{Title: l.Title, Target: l.Target, Icon: string(l.Icon)})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exp)
}

// doImport claims the username, copies the profile fields and appends the
// links in file order. Links already present are kept; imported ones go after
// them.
func doImport(ctx context.Context, a *app.App, logger logging.Logger, ownerID string, r io.Reader) error {
	var exp Export
	if err := json.NewDecoder(r).Decode(&exp); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if _, err := a.Profiles.SetUsername(ctx, ownerID, exp.Username); err != nil {
		return fmt.Errorf("set username %q: %w", exp.Username, err)
	}
	if exp.AvatarRef != "" && !domain.OwnsAvatarKey(ownerID, exp.AvatarRef) {
		logger.Warn(ctx, "dropping avatar of another owner", "avatar_ref", exp.AvatarRef)
		exp.AvatarRef = ""
	}
	_, err := a.Profiles.Update(ctx, ownerID, domain.ProfileChanges{
		DisplayName: &exp.DisplayName,
		Bio:         &exp.Bio,
		AvatarRef:   &exp.AvatarRef,
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	count := 0
	for _, l := range exp.Links {
		if _, err := a.Links.Add(ctx, ownerID, l.Title, l.Target, l.Icon); err != nil {
			logger.Warn(ctx, "skipping link", "title", l.Title, "error", err)
			continue
		}
		count++
	}
	logger.Info(ctx, "import finished", "owner_id", ownerID, "links", count, "skipped", len(exp.Links)-count)
	return nil
}
