package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// Polling bounds accepted for feed refresh intervals.
const (
	MinRefreshInterval = 30 * time.Second
	MaxRefreshInterval = 5 * time.Minute
)

// FeedManifestDocument models a YAML manifest that overrides or adds feeds.
type FeedManifestDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Feeds   []ManifestFeed `json:"feeds" yaml:"feeds"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestFeed describes a single feed entry within a manifest.
type ManifestFeed struct {
	Definition FeedDefinition `json:"definition" yaml:"definition"`
	Owner      ManifestOwner  `json:"owner,omitempty" yaml:"owner,omitempty"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestOwner records who maintains a feed declared in a manifest.
type ManifestOwner struct {
	Team    string `json:"team,omitempty" yaml:"team,omitempty"`
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`
	DocsURL string `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*FeedManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument merges manifest entries into the registry. Entries for
// known feeds override name, description, refresh interval and roles while
// keeping the built-in path and generator.
func (r *Registry) LoadManifestDocument(doc *FeedManifestDocument) error {
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	for _, feed := range doc.Feeds {
		def := feed.Definition
		if existing, ok := r.Definition(def.Code); ok {
			def = mergeDefinition(existing, def)
		}
		if err := r.RegisterDefinition(def); err != nil {
			return fmt.Errorf("dashboard: register feed %s from %s: %w", def.Code, doc.Source, err)
		}
		r.recordManifestOwner(def.Code, feed.Owner)
	}
	return nil
}

func mergeDefinition(base, override FeedDefinition) FeedDefinition {
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.Description != "" {
		base.Description = override.Description
	}
	if override.Category != "" {
		base.Category = override.Category
	}
	if override.RefreshInterval != 0 {
		base.RefreshInterval = override.RefreshInterval
	}
	if override.Roles != nil {
		base.Roles = append([]string(nil), override.Roles...)
	}
	if override.Chart != "" {
		base.Chart = override.Chart
	}
	return base
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*FeedManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*FeedManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc FeedManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes the document as YAML.
func EncodeManifest(w io.Writer, doc *FeedManifestDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode manifest: %w", err)
	}
	return enc.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *FeedManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Feeds))
	for idx, feed := range doc.Feeds {
		def := feed.Definition
		if def.Code == "" {
			return fmt.Errorf("dashboard: manifest feed at index %d is missing definition.code", idx)
		}
		if def.Name == "" {
			return fmt.Errorf("dashboard: manifest feed %s missing definition.name", def.Code)
		}
		if _, exists := seen[def.Code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates feed code %s", def.Code)
		}
		if def.RefreshInterval != 0 && (def.RefreshInterval < MinRefreshInterval || def.RefreshInterval > MaxRefreshInterval) {
			return fmt.Errorf("dashboard: manifest feed %s refresh interval %s outside [%s, %s]",
				def.Code, def.RefreshInterval, MinRefreshInterval, MaxRefreshInterval)
		}
		seen[def.Code] = struct{}{}
	}
	return nil
}

func (doc *FeedManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

func (o ManifestOwner) isZero() bool {
	return o.Team == "" && o.Contact == "" && o.DocsURL == ""
}
