package registry

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/models"
)

func writeClientConfig(t *testing.T, dir, slug, content string) {
	t.Helper()
	clientDir := filepath.Join(dir, slug)
	if err := os.MkdirAll(clientDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(clientDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestClientRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "acme-fitness", `
client:
  name: Acme Fitness
  status: active
  meta_account_id: act_123
  commission_rate: 0.15
funnels:
  - tag: vsl
    type: vsl_challenge
`)

	r := NewClientRegistry(dir, zap.NewNop())

	c, ok := r.Get("acme-fitness")
	if !ok {
		t.Fatal("client not loaded")
	}
	if c.Name != "Acme Fitness" {
		t.Errorf("Name = %q", c.Name)
	}
	if c.MetaAccountID != "act_123" {
		t.Errorf("MetaAccountID = %q", c.MetaAccountID)
	}
	if c.CommissionRate != 0.15 {
		t.Errorf("CommissionRate = %v", c.CommissionRate)
	}
	if len(c.Funnels) != 1 || c.Funnels[0] != "VSL" {
		t.Errorf("Funnels = %v, want [VSL]", c.Funnels)
	}
}

func TestClientRegistry_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "brez-scales", "client: {}\n")

	r := NewClientRegistry(dir, zap.NewNop())

	c, ok := r.Get("brez-scales")
	if !ok {
		t.Fatal("client not loaded")
	}
	if c.ID != "CLI_BRE" {
		t.Errorf("ID = %q, want CLI_BRE", c.ID)
	}
	if c.Name != "Brez Scales" {
		t.Errorf("Name = %q, want Brez Scales", c.Name)
	}
	if c.Status != models.ClientStatusActive {
		t.Errorf("Status = %q, want active", c.Status)
	}
	if c.CommissionRate != 0.20 {
		t.Errorf("CommissionRate = %v, want 0.20", c.CommissionRate)
	}
}

func TestClientRegistry_SkipsUnderscoreDirs(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "real", "client: {}\n")
	writeClientConfig(t, dir, "_template", "client: {}\n")

	r := NewClientRegistry(dir, zap.NewNop())

	if _, ok := r.Get("_template"); ok {
		t.Error("underscore-prefixed directories must be skipped")
	}
	if len(r.All()) != 1 {
		t.Errorf("loaded %d clients, want 1", len(r.All()))
	}
}

func TestClientRegistry_SkipsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "good", "client: {}\n")
	writeClientConfig(t, dir, "broken", "client: [not a mapping\n")

	r := NewClientRegistry(dir, zap.NewNop())

	if _, ok := r.Get("broken"); ok {
		t.Error("broken config must be skipped")
	}
	if _, ok := r.Get("good"); !ok {
		t.Error("good client must still load")
	}
}

func TestClientRegistry_EnvOverridesCredentials(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "acme-fitness", `
client:
  meta_access_token: from-config
  meta_account_id: act_config
`)
	t.Setenv("ACME_FITNESS_META_TOKEN", "from-env")
	t.Setenv("ACME_FITNESS_META_ACCOUNT", "act_env")

	r := NewClientRegistry(dir, zap.NewNop())

	c, _ := r.Get("acme-fitness")
	if c.MetaToken != "from-env" {
		t.Errorf("MetaToken = %q, want env override", c.MetaToken)
	}
	if c.MetaAccountID != "act_env" {
		t.Errorf("MetaAccountID = %q, want env override", c.MetaAccountID)
	}
}

func TestClientRegistry_Active(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "live", "client: {status: active}\n")
	writeClientConfig(t, dir, "paused", "client: {status: paused}\n")

	r := NewClientRegistry(dir, zap.NewNop())

	active := r.Active()
	if len(active) != 1 || active[0].Slug != "live" {
		t.Errorf("Active = %+v, want the live client only", active)
	}
}

func TestClientRegistry_ByMetaAccount(t *testing.T) {
	dir := t.TempDir()
	writeClientConfig(t, dir, "acme", "client: {meta_account_id: act_42}\n")

	r := NewClientRegistry(dir, zap.NewNop())

	c, ok := r.ByMetaAccount("act_42")
	if !ok || c.Slug != "acme" {
		t.Errorf("ByMetaAccount = %+v/%v, want acme", c, ok)
	}
	if _, ok := r.ByMetaAccount("act_unknown"); ok {
		t.Error("unknown account must not resolve")
	}
}
