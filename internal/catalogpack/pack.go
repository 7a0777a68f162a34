// Package catalogpack reads and writes catalog packs: versioned JSON files
// carrying items and collections between installs.
package catalogpack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/wordspark/internal/catalog"
)

// FormatVersion is written into every exported pack.
const FormatVersion = "v1.0.0"

var (
	// ErrInvalidPack is returned when a pack is not valid JSON or does not
	// match the pack schema.
	ErrInvalidPack = errors.New("invalid catalog pack")

	// ErrUnsupportedVersion is returned for packs from another major format.
	ErrUnsupportedVersion = errors.New("unsupported catalog pack version")
)

// Pack is the decoded file.
type Pack struct {
	FormatVersion string       `json:"format_version"`
	ExportedAt    string       `json:"exported_at,omitempty"`
	Items         []Item       `json:"items"`
	Collections   []Collection `json:"collections,omitempty"`
}

// Item is an item as carried in a pack. Performance and sync state stay
// with the install that produced it.
type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ImageRef      string   `json:"image_ref,omitempty"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Category      string   `json:"category,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Collection references pack items by their pack ids.
type Collection struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	ItemIDs      []string `json:"item_ids"`
	PracticeMode string   `json:"practice_mode,omitempty"`
	Active       bool     `json:"active,omitempty"`
}

// Parse decodes and validates a pack.
func Parse(r io.Reader) (*Pack, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile pack schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}

	var p Pack
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	if err := checkVersion(p.FormatVersion); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %s (this build reads %s)", ErrUnsupportedVersion, v, semver.Major(FormatVersion))
	}
	return nil
}

// Write encodes p as indented JSON.
func Write(w io.Writer, p *Pack) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	return nil
}

// ItemSource is the read side of the item catalog used by Export.
type ItemSource interface {
	List() []catalog.Item
}

// CollectionSource is the read side of the collection catalog used by
// Export.
type CollectionSource interface {
	List() []catalog.Collection
}

// ExportOptions controls what Export includes.
type ExportOptions struct {
	// IncludeLocal exports entities marked local-only.
	IncludeLocal bool

	// Now stamps ExportedAt. Zero leaves it empty.
	Now time.Time
}

// Export builds a pack from the catalogs. Collection item ids that do not
// resolve to an exported item are dropped.
func Export(items ItemSource, collections CollectionSource, opts ExportOptions) *Pack {
	p := &Pack{FormatVersion: FormatVersion, Items: []Item{}}
	if !opts.Now.IsZero() {
		p.ExportedAt = opts.Now.UTC().Format(time.RFC3339)
	}

	exported := make(map[string]bool)
	for _, it := range items.List() {
		if it.Sync.Local && !opts.IncludeLocal {
			continue
		}
		p.Items = append(p.Items, Item{
			ID:            it.ID,
			Name:          it.Name,
			ImageRef:      it.ImageRef,
			Pronunciation: it.Pronunciation,
			Tags:          it.Tags,
			Difficulty:    string(it.Difficulty),
			Category:      it.Category,
			Notes:         it.Notes,
		})
		exported[it.ID] = true
	}

	if collections == nil {
		return p
	}
	for _, c := range collections.List() {
		if c.Sync.Local && !opts.IncludeLocal {
			continue
		}
		ids := make([]string, 0, len(c.ItemIDs))
		for _, id := range c.ItemIDs {
			if exported[id] {
				ids = append(ids, id)
			}
		}
		p.Collections = append(p.Collections, Collection{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Category:     c.Category,
			ItemIDs:      ids,
			PracticeMode: string(c.PracticeMode),
			Active:       c.Active,
		})
	}
	return p
}

// ItemTarget is the write side of the item catalog used by Import.
type ItemTarget interface {
	FindByName(name string) (catalog.Item, bool)
	Add(in catalog.ItemInput) catalog.Item
}

// CollectionTarget is the write side of the collection catalog used by
// Import.
type CollectionTarget interface {
	Add(in catalog.CollectionInput) catalog.Collection
}

// Result summarizes an import.
type Result struct {
	ItemsAdded       int
	ItemsReused      int
	CollectionsAdded int

	// IDs maps pack item ids to catalog item ids.
	IDs map[string]string
}

// Import adds the pack's items and collections. An item whose name matches
// an existing item (case-insensitively) reuses that item instead of adding
// a duplicate. Imported collections start inactive unless the pack marks
// them active.
func Import(p *Pack, items ItemTarget, collections CollectionTarget, local bool) Result {
	res := Result{IDs: make(map[string]string, len(p.Items))}

	for _, in := range p.Items {
		name := strings.TrimSpace(in.Name)
		if existing, ok := items.FindByName(name); ok {
			res.IDs[in.ID] = existing.ID
			res.ItemsReused++
			continue
		}
		diff, _ := catalog.ParseDifficulty(in.Difficulty)
		it := items.Add(catalog.ItemInput{
			Name:          name,
			ImageRef:      in.ImageRef,
			Pronunciation: in.Pronunciation,
			Tags:          in.Tags,
			Difficulty:    diff,
			Category:      in.Category,
			Notes:         in.Notes,
			Local:         local,
		})
		res.IDs[in.ID] = it.ID
		res.ItemsAdded++
	}

	if collections == nil {
		return res
	}
	for _, c := range p.Collections {
		ids := make([]string, 0, len(c.ItemIDs))
		for _, id := range c.ItemIDs {
			if mapped, ok := res.IDs[id]; ok {
				ids = append(ids, mapped)
			}
		}
		mode, _ := catalog.ParsePracticeMode(c.PracticeMode)
		collections.Add(catalog.CollectionInput{
			Name:         c.Name,
			Description:  c.Description,
			Category:     c.Category,
			ItemIDs:      ids,
			Active:       c.Active,
			PracticeMode: mode,
			Local:        local,
		})
		res.CollectionsAdded++
	}
	return res
}
