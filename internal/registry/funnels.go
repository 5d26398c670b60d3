package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/funnelops/funnelboard/internal/models"
)

// funnelConfig mirrors a funnel definition in YAML, either a standalone
// funnels/{tag}.yaml file or an entry in the client config.yaml.
type funnelConfig struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Tag         string             `yaml:"tag"`
	Type        string             `yaml:"type"`
	Thresholds  map[string]float64 `yaml:"thresholds"`
	Description string             `yaml:"description"`
	IsActive    *bool              `yaml:"is_active"`
}

// FunnelRegistry manages funnel configurations per client. Funnels are loaded
// lazily the first time a client is touched and created on demand when a new
// tag shows up in campaign names.
type FunnelRegistry struct {
	clientsDir string
	logger     *zap.Logger

	mu      sync.Mutex
	funnels map[string]map[string]*models.Funnel // slug -> tag -> funnel
}

// NewFunnelRegistry builds an empty registry rooted at clientsDir.
func NewFunnelRegistry(clientsDir string, logger *zap.Logger) *FunnelRegistry {
	return &FunnelRegistry{
		clientsDir: clientsDir,
		logger:     logger,
		funnels:    make(map[string]map[string]*models.Funnel),
	}
}

// LoadClientFunnels loads every funnel defined for a client, from the
// funnels/ directory first and then from inline definitions in config.yaml.
// An unknown funnel type anywhere in the configuration fails the whole load:
// silently defaulting would swap in the wrong threshold table.
func (r *FunnelRegistry) LoadClientFunnels(slug string) (map[string]*models.Funnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadClientFunnelsLocked(slug)
}

func (r *FunnelRegistry) loadClientFunnelsLocked(slug string) (map[string]*models.Funnel, error) {
	if loaded, ok := r.funnels[slug]; ok {
		return loaded, nil
	}

	funnels := make(map[string]*models.Funnel)

	funnelsDir := filepath.Join(r.clientsDir, slug, "funnels")
	entries, err := os.ReadDir(funnelsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read funnels dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(funnelsDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read funnel %s: %w", entry.Name(), err)
		}
		var fc funnelConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("parse funnel %s: %w", entry.Name(), err)
		}
		stem := strings.TrimSuffix(entry.Name(), ".yaml")
		funnel, err := buildFunnel(fc, slug, stem)
		if err != nil {
			return nil, fmt.Errorf("funnel %s: %w", entry.Name(), err)
		}
		funnels[funnel.Tag] = funnel
	}

	// Inline definitions in config.yaml fill gaps but never override a
	// standalone funnel file.
	configPath := filepath.Join(r.clientsDir, slug, "config.yaml")
	if raw, err := os.ReadFile(configPath); err == nil {
		var cfg clientConfigFile
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse client config: %w", err)
		}
		for _, fc := range cfg.Funnels {
			tag := strings.ToUpper(fc.Tag)
			if tag == "" {
				continue
			}
			if _, exists := funnels[tag]; exists {
				continue
			}
			funnel, err := buildFunnel(fc, slug, strings.ToLower(tag))
			if err != nil {
				return nil, fmt.Errorf("funnel %s in client config: %w", tag, err)
			}
			funnels[tag] = funnel
		}
	}

	r.funnels[slug] = funnels
	r.logger.Debug("funnels loaded", zap.String("client", slug), zap.Int("count", len(funnels)))
	return funnels, nil
}

func buildFunnel(fc funnelConfig, slug, stem string) (*models.Funnel, error) {
	ft, err := models.ParseFunnelType(fc.Type)
	if err != nil {
		return nil, err
	}

	id := fc.ID
	if id == "" {
		id = "FUN_" + strings.ToUpper(truncate(stem, 6))
	}
	name := fc.Name
	if name == "" {
		name = titleFromSlug(stem)
	}
	tag := strings.ToUpper(fc.Tag)
	if tag == "" {
		tag = strings.ToUpper(stem)
	}

	funnel := models.NewFunnel(id, name, tag, ft, slug, fc.Thresholds)
	funnel.Description = fc.Description
	if fc.IsActive != nil {
		funnel.IsActive = *fc.IsActive
	}
	return funnel, nil
}

// Get returns the funnel for a client+tag pair, loading the client's
// configuration on first access.
func (r *FunnelRegistry) Get(slug, tag string) (*models.Funnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	funnels, err := r.loadClientFunnelsLocked(slug)
	if err != nil {
		return nil, err
	}
	return funnels[strings.ToUpper(tag)], nil
}

// GetOrCreate returns the configured funnel for a tag, or lazily registers a
// new one of the given type when the tag has never been configured. The lock
// makes the first-creation race between parallel aggregation runs benign.
func (r *FunnelRegistry) GetOrCreate(slug, tag string, ft models.FunnelType) (*models.Funnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	funnels, err := r.loadClientFunnelsLocked(slug)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(tag)
	if funnel, ok := funnels[upper]; ok {
		return funnel, nil
	}

	funnel := models.NewFunnel(
		"FUN_"+truncate(upper, 6),
		titleFromSlug(strings.ToLower(upper)),
		upper,
		ft,
		slug,
		nil,
	)
	funnels[upper] = funnel
	r.logger.Info("funnel registered",
		zap.String("client", slug),
		zap.String("tag", upper),
		zap.String("type", string(ft)))
	return funnel, nil
}

// Create builds a funnel, persists it as funnels/{tag}.yaml and registers it.
func (r *FunnelRegistry) Create(slug, name, tag string, ft models.FunnelType, thresholds map[string]float64, description string) (*models.Funnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	funnels, err := r.loadClientFunnelsLocked(slug)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(tag)
	funnel := models.NewFunnel(
		fmt.Sprintf("FUN_%s_%03d", truncate(upper, 6), len(funnels)+1),
		name,
		upper,
		ft,
		slug,
		thresholds,
	)
	funnel.Description = description

	funnelsDir := filepath.Join(r.clientsDir, slug, "funnels")
	if err := os.MkdirAll(funnelsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create funnels dir: %w", err)
	}
	raw, err := yaml.Marshal(funnel)
	if err != nil {
		return nil, fmt.Errorf("marshal funnel: %w", err)
	}
	path := filepath.Join(funnelsDir, strings.ToLower(upper)+".yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write funnel: %w", err)
	}

	funnels[upper] = funnel
	return funnel, nil
}

// List returns every funnel known for a client.
func (r *FunnelRegistry) List(slug string) ([]*models.Funnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	funnels, err := r.loadClientFunnelsLocked(slug)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Funnel, 0, len(funnels))
	for _, f := range funnels {
		out = append(out, f)
	}
	return out, nil
}
