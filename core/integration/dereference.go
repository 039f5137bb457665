package integration

import (
	"fmt"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/schema"
)

// Contribution is the concrete form of an interface for one statement,
// keyed by integration-side member names.
type Contribution struct {
	Actions  map[string]ActionDefinition
	Events   map[string]EventDefinition
	Channels map[string]ChannelDefinition
}

// Dereference instantiates every template of iface with the statement's
// entity bindings. Members are emitted under their aliased names; message
// names are kept as-is since the channel already namespaces them.
//
// Every declared entity must be bound, otherwise *schema.UnboundEntityError.
func Dereference(iface contract.Interface, st Statement) (Contribution, error) {
	bindings := make(map[string]*schema.Schema, len(st.Entities))
	for placeholder, e := range st.Entities {
		bindings[placeholder] = e.Schema
	}
	for _, decl := range iface.Entities {
		if _, ok := bindings[decl.Name]; !ok {
			return Contribution{}, fmt.Errorf("interface %s: %w", iface.Ref(),
				&schema.UnboundEntityError{Entity: decl.Name, Path: "entities." + decl.Name})
		}
	}

	out := Contribution{
		Actions:  make(map[string]ActionDefinition, len(iface.Actions)),
		Events:   make(map[string]EventDefinition, len(iface.Events)),
		Channels: make(map[string]ChannelDefinition, len(iface.Channels)),
	}

	for _, name := range iface.ActionNames() {
		action := iface.Actions[name]
		input, err := schema.Dereference(action.Input, bindings)
		if err != nil {
			return Contribution{}, fmt.Errorf("interface %s action %q input: %w", iface.Ref(), name, err)
		}
		output, err := schema.Dereference(action.Output, bindings)
		if err != nil {
			return Contribution{}, fmt.Errorf("interface %s action %q output: %w", iface.Ref(), name, err)
		}
		out.Actions[st.ActionName(name)] = ActionDefinition{
			Title:       action.Title,
			Description: action.Description,
			Input:       input,
			Output:      output,
		}
	}

	for _, name := range iface.EventNames() {
		event := iface.Events[name]
		payload, err := schema.Dereference(event.Schema, bindings)
		if err != nil {
			return Contribution{}, fmt.Errorf("interface %s event %q: %w", iface.Ref(), name, err)
		}
		out.Events[st.EventName(name)] = EventDefinition{
			Title:       event.Title,
			Description: event.Description,
			Schema:      payload,
		}
	}

	for _, name := range iface.ChannelNames() {
		channel := iface.Channels[name]
		messages := make(map[string]MessageDefinition, len(channel.Messages))
		for _, msg := range channel.MessageNames() {
			s, err := schema.Dereference(channel.Messages[msg].Schema, bindings)
			if err != nil {
				return Contribution{}, fmt.Errorf("interface %s channel %q message %q: %w", iface.Ref(), name, msg, err)
			}
			messages[msg] = MessageDefinition{Schema: s}
		}
		out.Channels[st.ChannelName(name)] = ChannelDefinition{
			Title:       channel.Title,
			Description: channel.Description,
			Messages:    messages,
		}
	}

	return out, nil
}
