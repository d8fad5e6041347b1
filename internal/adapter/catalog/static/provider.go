package staticcatalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"loopplanner/internal/domain/survival"
	"loopplanner/internal/domain/worldevent"

	"gopkg.in/yaml.v3"
)

const (
	ActionsFile   = "actions.json"
	LocationsFile = "locations.json"
	EventsFile    = "events.json"
	TuningFile    = "tuning.yaml"
)

var ErrInvalidDataPath = errors.New("invalid data filepath")

// Provider loads the game catalogs from a data directory. Only actions.json is
// required. Files are re-read when their modification times change, so edits
// made while the server runs show up on the next request.
type Provider struct {
	Root string

	mu      sync.Mutex
	stamp   string
	catalog survival.Catalog
	tuning  survival.Tuning
}

func NewProvider(root string) *Provider {
	return &Provider{Root: root}
}

func (p *Provider) Catalog(ctx context.Context) (survival.Catalog, error) {
	if err := p.refresh(ctx); err != nil {
		return survival.Catalog{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog, nil
}

func (p *Provider) Tuning(ctx context.Context) (survival.Tuning, error) {
	if err := p.refresh(ctx); err != nil {
		return survival.Tuning{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tuning, nil
}

// File returns the raw contents of a data file below Root.
func (p *Provider) File(_ context.Context, name string) ([]byte, error) {
	safePath, err := secureJoin(p.Root, name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(safePath)
}

func (p *Provider) refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamp, err := p.currentStamp()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if stamp == p.stamp {
		return nil
	}
	catalog, tuning, err := p.load()
	if err != nil {
		return err
	}
	p.catalog = catalog
	p.tuning = tuning
	p.stamp = stamp
	return nil
}

func (p *Provider) currentStamp() (string, error) {
	var b strings.Builder
	for _, name := range []string{ActionsFile, LocationsFile, EventsFile, TuningFile} {
		info, err := os.Stat(filepath.Join(p.Root, name))
		if errors.Is(err, fs.ErrNotExist) && name != ActionsFile {
			b.WriteString(name + ":-;")
			continue
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		fmt.Fprintf(&b, "%s:%d:%d;", name, info.ModTime().UnixNano(), info.Size())
	}
	return b.String(), nil
}

func (p *Provider) load() (survival.Catalog, survival.Tuning, error) {
	var catalog survival.Catalog
	if err := p.decodeJSON(ActionsFile, &catalog.Actions, true); err != nil {
		return survival.Catalog{}, survival.Tuning{}, err
	}

	var locations struct {
		Locations []survival.LocationDefinition `json:"locations"`
	}
	if err := p.decodeJSON(LocationsFile, &locations, false); err != nil {
		return survival.Catalog{}, survival.Tuning{}, err
	}
	catalog.Locations = locations.Locations

	var events struct {
		Events []worldevent.Definition `json:"events"`
	}
	if err := p.decodeJSON(EventsFile, &events, false); err != nil {
		return survival.Catalog{}, survival.Tuning{}, err
	}
	catalog.Events = events.Events

	tuning, err := p.loadTuning()
	if err != nil {
		return survival.Catalog{}, survival.Tuning{}, err
	}
	return catalog.Normalize(), tuning, nil
}

func (p *Provider) decodeJSON(name string, out any, required bool) error {
	b, err := os.ReadFile(filepath.Join(p.Root, name))
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (p *Provider) loadTuning() (survival.Tuning, error) {
	b, err := os.ReadFile(filepath.Join(p.Root, TuningFile))
	if errors.Is(err, fs.ErrNotExist) {
		return survival.DefaultTuning(), nil
	}
	if err != nil {
		return survival.Tuning{}, fmt.Errorf("read %s: %w", TuningFile, err)
	}
	var tuning survival.Tuning
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&tuning); err != nil && !errors.Is(err, io.EOF) {
		return survival.Tuning{}, fmt.Errorf("decode %s: %w", TuningFile, err)
	}
	return tuning.WithDefaults(), nil
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", ErrInvalidDataPath
	}
	if filepath.IsAbs(rel) {
		return "", ErrInvalidDataPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	prefix := rootAbs + string(filepath.Separator)
	if target != rootAbs && !strings.HasPrefix(target, prefix) {
		return "", ErrInvalidDataPath
	}
	return target, nil
}
