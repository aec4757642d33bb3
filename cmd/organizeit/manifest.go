package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ettle/strcase"

	"github.com/organizeit/go-organizeit/components/dashboard"
)

type manifestCmd struct {
	Validate manifestValidateCmd `cmd:"" help:"Check manifests against the built-in registry."`
	Add      manifestAddCmd      `cmd:"" help:"Add or replace a feed entry in a manifest."`
}

type manifestValidateCmd struct {
	Paths []string `arg:"" type:"existingfile" help:"Manifest files to check."`
}

func (cmd *manifestValidateCmd) Run(a *app) error {
	registry := dashboard.NewRegistry()
	if err := dashboard.LoadManifests(registry, cmd.Paths...); err != nil {
		return err
	}
	for _, def := range registry.Definitions() {
		if _, ok := registry.Generator(def.Code); !ok {
			fmt.Fprintf(a.out, "! %s has no generator and will return 404\n", def.Code)
		}
	}
	fmt.Fprintf(a.out, "✓ %d manifest(s) valid, %d feeds registered\n", len(cmd.Paths), len(registry.Definitions()))
	return nil
}

type manifestAddCmd struct {
	Path        string        `arg:"" type:"path" help:"Manifest YAML file to create or update."`
	Code        string        `required:"" help:"Feed code (e.g. itops.latency)."`
	Name        string        `help:"Display name (derived from the code when empty)."`
	Description string        `help:"One-line description."`
	Category    string        `help:"Category (defaults to the first code segment)."`
	Refresh     time.Duration `help:"Refresh interval between 30s and 5m."`
	Role        []string      `help:"Roles allowed to read the feed."`
	Chart       string        `help:"Chart type (line or bar)."`
	Team        string        `help:"Owning team."`
	Contact     string        `help:"Owner contact."`
	DocsURL     string        `name:"docs-url" help:"Link to feed documentation."`
	Tag         []string      `help:"Tags to record (repeatable)."`
	Overwrite   bool          `help:"Replace an existing entry with the same code."`
}

func (cmd *manifestAddCmd) Run(a *app) error {
	switch cmd.Chart {
	case "", "line", "bar":
	default:
		return fmt.Errorf("organizeit: unsupported chart type %q", cmd.Chart)
	}
	doc, err := loadOrInitManifest(cmd.Path)
	if err != nil {
		return err
	}
	entry := cmd.entry()
	replaced := false
	for idx := range doc.Feeds {
		if doc.Feeds[idx].Definition.Code != entry.Definition.Code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("organizeit: manifest already defines %s (use --overwrite to replace)", entry.Definition.Code)
		}
		doc.Feeds[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Feeds = append(doc.Feeds, entry)
	}
	sort.Slice(doc.Feeds, func(i, j int) bool {
		return doc.Feeds[i].Definition.Code < doc.Feeds[j].Definition.Code
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(cmd.Path, doc); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Added %s to %s\n", entry.Definition.Code, cmd.Path)
	return nil
}

func (cmd *manifestAddCmd) entry() dashboard.ManifestFeed {
	code := strings.TrimSpace(cmd.Code)
	name := cmd.Name
	if name == "" {
		name = strcase.ToCase(strings.ReplaceAll(code, ".", " "), strcase.TitleCase, ' ')
	}
	category := cmd.Category
	if category == "" {
		category = strings.SplitN(code, ".", 2)[0]
	}
	return dashboard.ManifestFeed{
		Definition: dashboard.FeedDefinition{
			Code:            code,
			Name:            name,
			Description:     cmd.Description,
			Category:        category,
			RefreshInterval: cmd.Refresh,
			Roles:           cmd.Role,
			Chart:           cmd.Chart,
		},
		Owner: dashboard.ManifestOwner{Team: cmd.Team, Contact: cmd.Contact, DocsURL: cmd.DocsURL},
		Tags:  cmd.Tag,
	}
}

func loadOrInitManifest(path string) (*dashboard.FeedManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.FeedManifestDocument{
				Version: dashboard.ManifestVersion,
				Feeds:   []dashboard.ManifestFeed{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("organizeit: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.FeedManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("organizeit: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("organizeit: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return dashboard.EncodeManifest(file, doc)
}
