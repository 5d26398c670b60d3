package registry

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/funnelops/funnelboard/internal/models"
)

func writeFunnelFile(t *testing.T, dir, slug, stem, content string) {
	t.Helper()
	funnelsDir := filepath.Join(dir, slug, "funnels")
	if err := os.MkdirAll(funnelsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(funnelsDir, stem+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write funnel: %v", err)
	}
}

func TestFunnelRegistry_LoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFunnelFile(t, dir, "acme", "vsl", `
name: VSL Challenge
tag: vsl
type: vsl_challenge
thresholds:
  roas_good: 2.8
`)

	r := NewFunnelRegistry(dir, zap.NewNop())

	f, err := r.Get("acme", "VSL")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f == nil {
		t.Fatal("funnel not loaded")
	}
	if f.Type != models.FunnelVSLChallenge {
		t.Errorf("Type = %q", f.Type)
	}
	if f.Tag != "VSL" {
		t.Errorf("Tag = %q, want VSL", f.Tag)
	}
	if v, ok := f.Threshold("roas", "good"); !ok || v != 2.8 {
		t.Errorf("roas_good = %v/%v, want 2.8/true", v, ok)
	}
}

func TestFunnelRegistry_InlineConfigDoesNotOverrideFile(t *testing.T) {
	dir := t.TempDir()
	writeFunnelFile(t, dir, "acme", "vsl", `
name: From File
tag: vsl
type: vsl_challenge
`)
	writeClientConfig(t, dir, "acme", `
client: {}
funnels:
  - tag: vsl
    name: From Inline
    type: webinar_live
  - tag: webinar
    name: Webinar
    type: webinar_live
`)

	r := NewFunnelRegistry(dir, zap.NewNop())

	funnels, err := r.LoadClientFunnels("acme")
	if err != nil {
		t.Fatalf("LoadClientFunnels: %v", err)
	}
	if len(funnels) != 2 {
		t.Fatalf("loaded %d funnels, want 2", len(funnels))
	}
	if funnels["VSL"].Name != "From File" {
		t.Errorf("VSL name = %q, standalone file must win", funnels["VSL"].Name)
	}
	if funnels["WEBINAR"].Type != models.FunnelWebinarLive {
		t.Errorf("WEBINAR type = %q", funnels["WEBINAR"].Type)
	}
}

func TestFunnelRegistry_UnknownTypeFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeFunnelFile(t, dir, "acme", "ok", "tag: ok\ntype: custom\n")
	writeFunnelFile(t, dir, "acme", "bad", "tag: bad\ntype: not_a_type\n")

	r := NewFunnelRegistry(dir, zap.NewNop())

	if _, err := r.LoadClientFunnels("acme"); err == nil {
		t.Fatal("unknown funnel type must fail the whole load")
	}
}

func TestFunnelRegistry_GetOrCreate(t *testing.T) {
	dir := t.TempDir()
	r := NewFunnelRegistry(dir, zap.NewNop())

	created, err := r.GetOrCreate("acme", "new_offer", models.FunnelCustom)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created.Tag != "NEW_OFFER" {
		t.Errorf("Tag = %q, want NEW_OFFER", created.Tag)
	}
	if created.Type != models.FunnelCustom {
		t.Errorf("Type = %q, want custom", created.Type)
	}

	again, err := r.GetOrCreate("acme", "NEW_OFFER", models.FunnelVSLChallenge)
	if err != nil {
		t.Fatalf("GetOrCreate second: %v", err)
	}
	if again != created {
		t.Error("second GetOrCreate must return the registered funnel")
	}
	if again.Type != models.FunnelCustom {
		t.Errorf("existing funnel type changed to %q", again.Type)
	}
}

func TestFunnelRegistry_CreatePersists(t *testing.T) {
	dir := t.TempDir()
	r := NewFunnelRegistry(dir, zap.NewNop())

	_, err := r.Create("acme", "High Ticket", "ht", models.FunnelHighTicket, nil, "call funnel")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path := filepath.Join(dir, "acme", "funnels", "ht.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("funnel file not written: %v", err)
	}

	// A fresh registry must load it back.
	r2 := NewFunnelRegistry(dir, zap.NewNop())
	f, err := r2.Get("acme", "HT")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f == nil || f.Name != "High Ticket" || f.Type != models.FunnelHighTicket {
		t.Errorf("reloaded funnel = %+v", f)
	}
	if f.Description != "call funnel" {
		t.Errorf("Description = %q", f.Description)
	}
}

func TestFunnelRegistry_MissingClientDirIsEmpty(t *testing.T) {
	r := NewFunnelRegistry(t.TempDir(), zap.NewNop())

	funnels, err := r.LoadClientFunnels("ghost")
	if err != nil {
		t.Fatalf("LoadClientFunnels: %v", err)
	}
	if len(funnels) != 0 {
		t.Errorf("got %d funnels, want 0", len(funnels))
	}
}
