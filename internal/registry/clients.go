// Package registry holds the configuration repositories for clients, funnels
// and products. Registries are explicit objects injected into the aggregator
// rather than process-wide singletons, and every mutation path is mutex
// guarded so parallel aggregation runs can share them safely.
//
// Configuration lives as YAML under a clients directory:
//
//	clients/
//	    {client-slug}/
//	        config.yaml     # client + inline funnel definitions
//	        funnels/        # one yaml per funnel tag
//	        products/       # one yaml per product
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

// clientConfigFile mirrors the on-disk config.yaml layout.
type clientConfigFile struct {
	Client  clientSection  `yaml:"client"`
	Funnels []funnelConfig `yaml:"funnels"`
}

type clientSection struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Slug           string  `yaml:"slug"`
	Status         string  `yaml:"status"`
	MetaAccountID  string  `yaml:"meta_account_id"`
	MetaToken      string  `yaml:"meta_access_token"`
	CommissionRate float64 `yaml:"commission_rate"`
}

// ClientRegistry loads and indexes client configurations.
type ClientRegistry struct {
	clientsDir string
	logger     *zap.Logger

	mu      sync.RWMutex
	clients map[string]models.Client
}

// NewClientRegistry scans clientsDir for client folders and loads each
// config.yaml found. A broken client config is logged and skipped; a missing
// directory just yields an empty registry.
func NewClientRegistry(clientsDir string, logger *zap.Logger) *ClientRegistry {
	r := &ClientRegistry{
		clientsDir: clientsDir,
		logger:     logger,
		clients:    make(map[string]models.Client),
	}
	r.load()
	return r
}

func (r *ClientRegistry) load() {
	entries, err := os.ReadDir(r.clientsDir)
	if err != nil {
		r.logger.Warn("clients directory not readable", zap.String("dir", r.clientsDir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		client, err := r.loadClient(entry.Name())
		if err != nil {
			r.logger.Warn("skipping client config", zap.String("slug", entry.Name()), zap.Error(err))
			continue
		}
		r.clients[client.Slug] = client
	}
	r.logger.Info("clients loaded", zap.Int("count", len(r.clients)))
}

func (r *ClientRegistry) loadClient(slug string) (models.Client, error) {
	path := filepath.Join(r.clientsDir, slug, "config.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Client{}, fmt.Errorf("read config: %w", err)
	}

	var cfg clientConfigFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return models.Client{}, fmt.Errorf("parse config: %w", err)
	}

	c := cfg.Client
	client := models.Client{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           slug,
		Status:         c.Status,
		MetaAccountID:  c.MetaAccountID,
		MetaToken:      c.MetaToken,
		CommissionRate: c.CommissionRate,
	}
	if client.ID == "" {
		client.ID = "CLI_" + strings.ToUpper(truncate(slug, 3))
	}
	if client.Name == "" {
		client.Name = titleFromSlug(slug)
	}
	if client.Status == "" {
		client.Status = models.ClientStatusActive
	}
	if client.CommissionRate == 0 {
		client.CommissionRate = 0.20
	}

	// Environment variables trump config values for credentials, per-client
	// first, then the shared fallback.
	envPrefix := strings.ToUpper(strings.ReplaceAll(slug, "-", "_"))
	if v := firstEnv(envPrefix+"_META_TOKEN", "META_ACCESS_TOKEN"); v != "" {
		client.MetaToken = v
	}
	if v := firstEnv(envPrefix+"_META_ACCOUNT", "META_AD_ACCOUNT_ID"); v != "" {
		client.MetaAccountID = v
	}

	for _, fc := range cfg.Funnels {
		if fc.Tag != "" {
			client.Funnels = append(client.Funnels, strings.ToUpper(fc.Tag))
		}
	}
	return client, nil
}

// Get returns a client by slug.
func (r *ClientRegistry) Get(slug string) (models.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[slug]
	return c, ok
}

// All returns every loaded client.
func (r *ClientRegistry) All() []models.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Active returns the clients under active management.
func (r *ClientRegistry) Active() []models.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Client
	for _, c := range r.clients {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out
}

// ByMetaAccount finds the client owning a Meta ad account.
func (r *ClientRegistry) ByMetaAccount(accountID string) (models.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.MetaAccountID == accountID {
			return c, true
		}
	}
	return models.Client{}, false
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// titleFromSlug turns "brez-scales" into "Brez Scales".
func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
