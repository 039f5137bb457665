package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
)

func TestRegistry_Interfaces(t *testing.T) {
	r := New()

	for _, iface := range []contract.Interface{
		{Name: "hitl", Version: "0.2.0"},
		{Name: "deletable", Version: "0.0.1"},
		{Name: "hitl", Version: "0.1.0"},
	} {
		if err := r.RegisterInterface(iface, iface.Ref()+".yaml"); err != nil {
			t.Fatalf("RegisterInterface(%s) error = %v", iface.Ref(), err)
		}
	}

	got, ok := r.Interface("hitl", "0.2.0")
	if !ok || got.Version != "0.2.0" {
		t.Errorf("Interface(hitl, 0.2.0) = %+v, %v", got, ok)
	}
	if _, ok := r.Interface("hitl", "0.3.0"); ok {
		t.Error("Interface(hitl, 0.3.0) found unexpectedly")
	}

	var refs []string
	for _, iface := range r.Interfaces() {
		refs = append(refs, iface.Ref())
	}
	if strings.Join(refs, ",") != "deletable@0.0.1,hitl@0.1.0,hitl@0.2.0" {
		t.Errorf("Interfaces() = %v", refs)
	}

	src, ok := r.Source("interface", "hitl@0.1.0")
	if !ok || src != "hitl@0.1.0.yaml" {
		t.Errorf("Source() = %q, %v", src, ok)
	}
}

func TestRegistry_InterfaceConflict(t *testing.T) {
	r := New()
	iface := contract.Interface{Name: "hitl", Version: "0.2.0"}

	if err := r.RegisterInterface(iface, "a.yaml"); err != nil {
		t.Fatalf("RegisterInterface() error = %v", err)
	}
	err := r.RegisterInterface(iface, "b.yaml")

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("RegisterInterface() error = %v, want *ConflictError", err)
	}
	if !conflict.HasConflicts() {
		t.Error("HasConflicts() = false")
	}
	if !strings.Contains(err.Error(), "a.yaml and b.yaml") {
		t.Errorf("Error() = %q, want both sources", err.Error())
	}
}

func TestRegistry_Integrations(t *testing.T) {
	r := New()

	if err := r.RegisterIntegration(integration.Definition{Name: "slack", Version: "1.0.0"}, "slack.yaml"); err != nil {
		t.Fatalf("RegisterIntegration() error = %v", err)
	}
	if err := r.RegisterIntegration(integration.Definition{Name: "slack", Version: "2.0.0"}, "slack2.yaml"); err == nil {
		t.Error("RegisterIntegration() duplicate name expected error")
	}

	resolved := integration.Definition{Name: "slack", Version: "1.0.0", Title: "Slack"}
	if err := r.ReplaceIntegration(resolved); err != nil {
		t.Fatalf("ReplaceIntegration() error = %v", err)
	}
	got, _ := r.Integration("slack")
	if got.Title != "Slack" {
		t.Errorf("Title = %q, want Slack", got.Title)
	}
	if src, _ := r.Source("integration", "slack"); src != "slack.yaml" {
		t.Errorf("Source() = %q, want slack.yaml", src)
	}

	if err := r.ReplaceIntegration(integration.Definition{Name: "teams"}); err == nil {
		t.Error("ReplaceIntegration() of unknown integration expected error")
	}
	if n := len(r.Integrations()); n != 1 {
		t.Errorf("len(Integrations()) = %d, want 1", n)
	}
}
