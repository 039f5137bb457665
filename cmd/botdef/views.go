package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/botdef/bootstrap"
	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/dispatch"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/manifest"
)

// interfaceRow summarizes one interface.
type interfaceRow struct {
	Ref      string   `json:"ref" yaml:"ref"`
	Entities []string `json:"entities" yaml:"entities"`
	Actions  []string `json:"actions" yaml:"actions"`
	Events   []string `json:"events" yaml:"events"`
	Channels []string `json:"channels" yaml:"channels"`
	Source   string   `json:"source" yaml:"source"`
}

type interfaceList []interfaceRow

func newInterfaceList(proj *manifest.Project) interfaceList {
	var out interfaceList
	for _, iface := range proj.Interfaces() {
		source, _ := proj.Registry.Source("interface", iface.Ref())
		out = append(out, interfaceRow{
			Ref:      iface.Ref(),
			Entities: iface.EntityNames(),
			Actions:  iface.ActionNames(),
			Events:   iface.EventNames(),
			Channels: iface.ChannelNames(),
			Source:   source,
		})
	}
	return out
}

func (l interfaceList) Header() []string {
	return []string{"interface", "entities", "actions", "events", "channels", "source"}
}

func (l interfaceList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Ref, join(r.Entities), join(r.Actions), join(r.Events), join(r.Channels), r.Source}
	}
	return rows
}

// integrationRow summarizes one resolved integration.
type integrationRow struct {
	Ref        string   `json:"ref" yaml:"ref"`
	Implements []string `json:"implements" yaml:"implements"`
	Actions    int      `json:"actions" yaml:"actions"`
	Events     int      `json:"events" yaml:"events"`
	Channels   int      `json:"channels" yaml:"channels"`
	Source     string   `json:"source" yaml:"source"`
}

type integrationList []integrationRow

func newIntegrationList(proj *manifest.Project) integrationList {
	var out integrationList
	for _, def := range proj.Integrations() {
		source, _ := proj.Registry.Source("integration", def.Name)
		out = append(out, integrationRow{
			Ref:        def.Ref(),
			Implements: def.BindingKeys(),
			Actions:    len(def.Actions),
			Events:     len(def.Events),
			Channels:   len(def.Channels),
			Source:     source,
		})
	}
	return out
}

func (l integrationList) Header() []string {
	return []string{"integration", "implements", "actions", "events", "channels", "source"}
}

func (l integrationList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Ref, join(r.Implements), itoa(r.Actions), itoa(r.Events), itoa(r.Channels), r.Source}
	}
	return rows
}

// bindingRow describes one interface statement of an integration.
type bindingRow struct {
	Key       string `json:"key" yaml:"key"`
	Interface string `json:"interface" yaml:"interface"`
	Entities  string `json:"entities" yaml:"entities"`
	Actions   string `json:"actions" yaml:"actions"`
	Events    string `json:"events" yaml:"events"`
	Channels  string `json:"channels" yaml:"channels"`
}

type bindingList []bindingRow

func newBindingList(def integration.Definition) bindingList {
	var out bindingList
	for _, key := range def.BindingKeys() {
		st := def.Interfaces[key]

		entities := make(map[string]string, len(st.Entities))
		for placeholder, e := range st.Entities {
			entities[placeholder] = e.Name
		}

		out = append(out, bindingRow{
			Key:       key,
			Interface: st.Ref(),
			Entities:  pairs(entities),
			Actions:   aliasPairs(st.Actions),
			Events:    aliasPairs(st.Events),
			Channels:  aliasPairs(st.Channels),
		})
	}
	return out
}

func (l bindingList) Header() []string {
	return []string{"binding key", "interface", "entities", "actions", "events", "channels"}
}

func (l bindingList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Key, r.Interface, r.Entities, r.Actions, r.Events, r.Channels}
	}
	return rows
}

// botRow summarizes one bot.
type botRow struct {
	Name         string   `json:"name" yaml:"name"`
	Integrations []string `json:"integrations" yaml:"integrations"`
	Interfaces   []string `json:"interfaces" yaml:"interfaces"`
	Source       string   `json:"source" yaml:"source"`
}

type botList []botRow

func newBotList(proj *manifest.Project) botList {
	var out botList
	for _, name := range proj.BotNames() {
		b, _ := proj.Bot(name)
		var deps []string
		for _, dep := range b.InterfaceNames() {
			deps = append(deps, b.Interfaces[dep].Ref())
		}
		out = append(out, botRow{
			Name:         name,
			Integrations: b.IntegrationNames(),
			Interfaces:   deps,
			Source:       proj.BotSource(name),
		})
	}
	return out
}

func (l botList) Header() []string {
	return []string{"bot", "integrations", "interfaces", "source"}
}

func (l botList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Name, join(r.Integrations), join(r.Interfaces), r.Source}
	}
	return rows
}

// memberRow is one member of a single interface or bot.
type memberRow struct {
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type memberList []memberRow

func newInterfaceMembers(iface contract.Interface) memberList {
	var out memberList
	for _, name := range iface.EntityNames() {
		out = append(out, memberRow{Kind: "entity", Name: name})
	}
	for _, name := range iface.ActionNames() {
		out = append(out, memberRow{Kind: "action", Name: name})
	}
	for _, name := range iface.EventNames() {
		out = append(out, memberRow{Kind: "event", Name: name})
	}
	for _, name := range iface.ChannelNames() {
		out = append(out, memberRow{Kind: "channel", Name: name})
	}
	return out
}

func newBotMembers(b bot.Definition) memberList {
	var out memberList
	for _, name := range b.IntegrationNames() {
		inst := b.Integrations[name]
		detail := inst.Package.Definition.Version
		if !inst.Enabled {
			detail += " (disabled)"
		}
		out = append(out, memberRow{Kind: "integration", Name: name, Detail: detail})
	}
	for _, name := range b.InterfaceNames() {
		out = append(out, memberRow{Kind: "interface", Name: name, Detail: b.Interfaces[name].Version})
	}
	for _, name := range sortedNames(b.Actions) {
		out = append(out, memberRow{Kind: "action", Name: name})
	}
	for _, name := range sortedNames(b.Events) {
		out = append(out, memberRow{Kind: "event", Name: name})
	}
	for _, name := range sortedNames(b.States) {
		out = append(out, memberRow{Kind: "state", Name: name, Detail: string(b.States[name].Type)})
	}
	return out
}

func (l memberList) Header() []string {
	return []string{"kind", "name", "detail"}
}

func (l memberList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Kind, r.Name, r.Detail}
	}
	return rows
}

// resolutionRow is the integration satisfying one bot dependency.
type resolutionRow struct {
	Interface   string `json:"interface" yaml:"interface"`
	Integration string `json:"integration" yaml:"integration"`
	BindingKey  string `json:"bindingKey" yaml:"bindingKey"`
}

type resolutionList []resolutionRow

func newResolutionList(resolved map[string]bot.Resolution) resolutionList {
	out := make(resolutionList, 0, len(resolved))
	for _, name := range sortedNames(resolved) {
		res := resolved[name]
		out = append(out, resolutionRow{
			Interface:   res.Dependency.Ref(),
			Integration: res.Integration,
			BindingKey:  res.BindingKey,
		})
	}
	return out
}

func (l resolutionList) Header() []string {
	return []string{"interface", "integration", "binding key"}
}

func (l resolutionList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Interface, r.Integration, r.BindingKey}
	}
	return rows
}

// routeRow is one dispatch table entry.
type routeRow struct {
	Provider string `json:"provider" yaml:"provider"`
	Kind     string `json:"kind" yaml:"kind"`
	Member   string `json:"member" yaml:"member"`
	Target   string `json:"target" yaml:"target"`
}

type routeList []routeRow

func newRouteList(t *dispatch.Table) routeList {
	var out routeList
	for _, provider := range t.Providers() {
		r, _ := t.Route(provider)
		for _, member := range sortedNames(r.Actions) {
			out = append(out, routeRow{Provider: provider, Kind: "action", Member: member, Target: t.Resolve(provider, member)})
		}
		for _, member := range sortedNames(r.Events) {
			out = append(out, routeRow{Provider: provider, Kind: "event", Member: member, Target: t.EventType(provider, member)})
		}
	}
	return out
}

func (l routeList) Header() []string {
	return []string{"provider", "kind", "member", "target"}
}

func (l routeList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Provider, r.Kind, r.Member, r.Target}
	}
	return rows
}

// validationRow is the validation outcome of one bot.
type validationRow struct {
	Bot    string `json:"bot" yaml:"bot"`
	Source string `json:"source" yaml:"source"`
	Valid  bool   `json:"valid" yaml:"valid"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type validationList []validationRow

func newValidationList(results []bootstrap.BotResult) validationList {
	out := make(validationList, len(results))
	for i, r := range results {
		out[i] = validationRow{Bot: r.Bot, Source: r.Source, Valid: r.Err == nil}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

func (l validationList) Header() []string {
	return []string{"bot", "source", "valid", "error"}
}

func (l validationList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Bot, r.Source, fmt.Sprint(r.Valid), r.Error}
	}
	return rows
}

// publishRow is one published package.
type publishRow struct {
	Kind string `json:"kind" yaml:"kind"`
	Ref  string `json:"ref" yaml:"ref"`
	ID   string `json:"id" yaml:"id"`
}

type publishList []publishRow

func newPublishList(report bootstrap.PublishReport) publishList {
	var out publishList
	for _, ref := range sortedNames(report.Interfaces) {
		out = append(out, publishRow{Kind: "interface", Ref: ref, ID: report.Interfaces[ref]})
	}
	for _, ref := range sortedNames(report.Integrations) {
		out = append(out, publishRow{Kind: "integration", Ref: ref, ID: report.Integrations[ref]})
	}
	return out
}

func (l publishList) Header() []string {
	return []string{"kind", "package", "id"}
}

func (l publishList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		rows[i] = []string{r.Kind, r.Ref, r.ID}
	}
	return rows
}

func join(items []string) string {
	return strings.Join(items, ", ")
}

func itoa(n int) string {
	return fmt.Sprint(n)
}

// pairs renders a map as "k=v" pairs in key order.
func pairs(m map[string]string) string {
	items := make([]string, 0, len(m))
	for _, k := range sortedNames(m) {
		items = append(items, k+"="+m[k])
	}
	return join(items)
}

func aliasPairs(m map[string]integration.Alias) string {
	renamed := make(map[string]string)
	for member, alias := range m {
		if alias.Name != member {
			renamed[member] = alias.Name
		}
	}
	return pairs(renamed)
}

func sortedNames[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
