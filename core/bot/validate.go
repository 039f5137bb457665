package bot

import (
	"fmt"
	"strings"

	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/schema"
)

// UnsatisfiedInterfaceError is returned when no installed integration
// implements an interface the bot depends on.
type UnsatisfiedInterfaceError struct {
	// Interface is the "name@version" reference of the dependency.
	Interface string
}

func (e *UnsatisfiedInterfaceError) Error() string {
	return fmt.Sprintf("The bot declares a dependency on interface %s but no integration implements it. Please install an integration that implements this interface.", e.Interface)
}

// NamingError is returned when bot members are not in camelCase.
type NamingError struct {
	Kind  string
	Names []string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("The following %s names are not in camelCase: %s", e.Kind, strings.Join(e.Names, ", "))
}

// Resolution records which installed integration satisfies a dependency.
type Resolution struct {
	Dependency  Dependency
	Integration string
	BindingKey  string
	Statement   integration.Statement
}

// Validate checks member naming, then that every interface dependency is
// implemented by an installed integration. Dependencies are checked in name
// order and the first unsatisfied one is returned.
func Validate(d Definition) error {
	if err := checkNames("action", sortedKeys(d.Actions)); err != nil {
		return err
	}
	if err := checkNames("event", sortedKeys(d.Events)); err != nil {
		return err
	}
	if err := checkNames("state", sortedKeys(d.States)); err != nil {
		return err
	}

	_, err := ResolveInterfaces(d)
	return err
}

// ResolveInterfaces maps every interface dependency to the first installed
// integration, in name order, that implements it. Versions are compared by
// exact string equality. Installations count whether enabled or not.
func ResolveInterfaces(d Definition) (map[string]Resolution, error) {
	out := make(map[string]Resolution, len(d.Interfaces))
	for _, name := range d.InterfaceNames() {
		dep := d.Interfaces[name]
		res, ok := satisfy(d, dep)
		if !ok {
			return nil, &UnsatisfiedInterfaceError{Interface: dep.Ref()}
		}
		out[name] = res
	}
	return out, nil
}

func satisfy(d Definition, dep Dependency) (Resolution, bool) {
	for _, name := range d.IntegrationNames() {
		def := d.Integrations[name].Package.Definition
		for _, key := range def.BindingKeys() {
			if st := def.Interfaces[key]; st.Matches(dep.Name, dep.Version) {
				return Resolution{
					Dependency:  dep,
					Integration: name,
					BindingKey:  key,
					Statement:   st,
				}, true
			}
		}
	}
	return Resolution{}, false
}

func checkNames(kind string, names []string) error {
	var invalid []string
	for _, n := range names {
		if !schema.IsCamelCase(n) {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return &NamingError{Kind: kind, Names: invalid}
	}
	return nil
}
