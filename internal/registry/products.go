package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/funnelops/funnelboard/internal/models"
)

// productConfigFile mirrors a products/{id}.yaml file, where the product
// sits under a "product" key.
type productConfigFile struct {
	Product *models.FunnelProduct `yaml:"product"`
}

// decodeProduct reads a product document, accepting both the wrapped
// {product: ...} layout and a bare product at the document root.
func decodeProduct(raw []byte) (models.FunnelProduct, error) {
	var wrapped productConfigFile
	if err := yaml.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		return *wrapped.Product, nil
	}
	var p models.FunnelProduct
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return models.FunnelProduct{}, err
	}
	return p, nil
}

// ProductRegistry indexes funnel products by ID, funnel tag and platform.
// It is safe for concurrent readers alongside Add/Load calls.
type ProductRegistry struct {
	clientsDir string
	logger     *zap.Logger

	mu         sync.RWMutex
	loaded     map[string][]*models.FunnelProduct // slug -> products from disk
	products   map[string]*models.FunnelProduct
	byFunnel   map[string][]*models.FunnelProduct
	byPlatform map[string][]*models.FunnelProduct
}

// NewProductRegistry builds an empty registry rooted at clientsDir.
func NewProductRegistry(clientsDir string, logger *zap.Logger) *ProductRegistry {
	return &ProductRegistry{
		clientsDir: clientsDir,
		logger:     logger,
		loaded:     make(map[string][]*models.FunnelProduct),
		products:   make(map[string]*models.FunnelProduct),
		byFunnel:   make(map[string][]*models.FunnelProduct),
		byPlatform: make(map[string][]*models.FunnelProduct),
	}
}

// LoadClientProducts reads every products/*.yaml for a client and indexes
// the results. The load runs once per client; repeat calls return the cached
// list. A broken product file is logged and skipped; the rest of the
// directory still loads.
func (r *ProductRegistry) LoadClientProducts(slug string) ([]*models.FunnelProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.loaded[slug]; ok {
		return cached, nil
	}

	productsDir := filepath.Join(r.clientsDir, slug, "products")
	entries, err := os.ReadDir(productsDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.loaded[slug] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("read products dir: %w", err)
	}

	var loaded []*models.FunnelProduct
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(productsDir, entry.Name()))
		if err != nil {
			r.logger.Warn("skipping product file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		product, err := decodeProduct(raw)
		if err != nil {
			r.logger.Warn("skipping product file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		product.FunnelTag = strings.ToUpper(product.FunnelTag)
		product.Finalize()
		r.addLocked(&product)
		loaded = append(loaded, &product)
	}
	r.loaded[slug] = loaded
	return loaded, nil
}

// Add finalizes and indexes a product. A missing ID gets a generated one.
func (r *ProductRegistry) Add(p *models.FunnelProduct) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(p)
}

func (r *ProductRegistry) addLocked(p *models.FunnelProduct) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.BreakevenCPP == 0 {
		p.Finalize()
	}

	r.products[p.ID] = p
	if p.FunnelTag != "" {
		r.byFunnel[p.FunnelTag] = append(r.byFunnel[p.FunnelTag], p)
	}
	if p.Platform != "" {
		r.byPlatform[p.Platform] = append(r.byPlatform[p.Platform], p)
	}
}

// Get returns a product by ID.
func (r *ProductRegistry) Get(id string) (*models.FunnelProduct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok
}

// ProductForFunnel resolves the product bound to a funnel tag, preferring the
// requested position and falling back to the first registered product when no
// product holds that position.
func (r *ProductRegistry) ProductForFunnel(funnelTag, position string) *models.FunnelProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := r.byFunnel[strings.ToUpper(funnelTag)]
	for _, p := range products {
		if p.FunnelPosition == position {
			return p
		}
	}
	if len(products) > 0 {
		return products[0]
	}
	return nil
}

// MainProduct resolves the funnel's front-end offer.
func (r *ProductRegistry) MainProduct(funnelTag string) *models.FunnelProduct {
	return r.ProductForFunnel(funnelTag, models.FunnelPositionMain)
}

// ProductsForFunnel returns every product mapped to a funnel tag.
func (r *ProductRegistry) ProductsForFunnel(funnelTag string) []*models.FunnelProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byFunnel[strings.ToUpper(funnelTag)]
}

// ProductsForPlatform returns every product synced from a checkout platform.
func (r *ProductRegistry) ProductsForPlatform(platform string) []*models.FunnelProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPlatform[platform]
}

// FunnelTotalValue sums the list price of every offer in a funnel.
func (r *ProductRegistry) FunnelTotalValue(funnelTag string) float64 {
	var total float64
	for _, p := range r.ProductsForFunnel(funnelTag) {
		total += p.Price
	}
	return total
}

// MaxCPPForFunnel computes the highest profitable CPP for a funnel at the
// given ROAS target. The main product drives the number; when no main product
// exists the average net revenue across the funnel's offers is used.
func (r *ProductRegistry) MaxCPPForFunnel(funnelTag string, targetROAS float64) float64 {
	products := r.ProductsForFunnel(funnelTag)
	if len(products) == 0 || targetROAS <= 0 {
		return 0
	}
	if main := r.MainProduct(funnelTag); main != nil {
		return main.MaxCPPForROAS(targetROAS)
	}
	var totalNet float64
	for _, p := range products {
		totalNet += p.NetRevenuePerSale()
	}
	return totalNet / float64(len(products)) / targetROAS
}

// OptimizationBands holds CPP and ROAS grading bands derived from a funnel's
// main product, with static fallbacks when no product is bound.
type OptimizationBands struct {
	CPP          map[string]float64 `json:"cpp"`
	ROAS         map[string]float64 `json:"roas"`
	ProductPrice float64            `json:"product_price,omitempty"`
	BreakevenCPP float64            `json:"breakeven_cpp,omitempty"`
	TargetCPP    float64            `json:"target_cpp,omitempty"`
	NetRevenue   float64            `json:"net_revenue,omitempty"`
}

// OptimizationThresholds derives grading bands for a funnel from its main
// product economics.
func (r *ProductRegistry) OptimizationThresholds(funnelTag string) OptimizationBands {
	main := r.MainProduct(funnelTag)
	if main == nil {
		return OptimizationBands{
			CPP:  map[string]float64{"excellent": 12, "good": 18, "warning": 25, "critical": 35},
			ROAS: map[string]float64{"excellent": 3.0, "good": 2.0, "warning": 1.5, "critical": 1.0},
		}
	}

	cpp := map[string]float64{"excellent": 12, "good": 18, "warning": 25, "critical": 35}
	if main.TargetCPP > 0 {
		cpp["excellent"] = main.TargetCPP * 0.7
		cpp["good"] = main.TargetCPP
	}
	if main.BreakevenCPP > 0 {
		cpp["warning"] = main.BreakevenCPP * 0.8
		cpp["critical"] = main.BreakevenCPP
	}

	return OptimizationBands{
		CPP: cpp,
		ROAS: map[string]float64{
			"excellent": main.TargetROAS * 1.5,
			"good":      main.TargetROAS,
			"warning":   main.TargetROAS * 0.75,
			"critical":  1.0,
		},
		ProductPrice: main.Price,
		BreakevenCPP: main.BreakevenCPP,
		TargetCPP:    main.TargetCPP,
		NetRevenue:   main.NetRevenuePerSale(),
	}
}

// Save persists a product configuration under the client's products dir.
func (r *ProductRegistry) Save(slug string, p *models.FunnelProduct) error {
	productsDir := filepath.Join(r.clientsDir, slug, "products")
	if err := os.MkdirAll(productsDir, 0o755); err != nil {
		return fmt.Errorf("create products dir: %w", err)
	}
	raw, err := yaml.Marshal(productConfigFile{Product: p})
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	path := filepath.Join(productsDir, p.ID+".yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write product: %w", err)
	}
	return nil
}
