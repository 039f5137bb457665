package integration

import (
	"fmt"

	"github.com/artpar/botdef/core/schema"
)

// MergeActions folds incoming actions into existing ones. On a name
// collision input and output schemas are merged structurally and the
// incoming title and description replace the existing ones when set.
func MergeActions(existing, incoming map[string]ActionDefinition) (map[string]ActionDefinition, error) {
	return mergeTables("action", existing, incoming, mergeAction)
}

// MergeEvents folds incoming events into existing ones, merging payload
// schemas on a name collision.
func MergeEvents(existing, incoming map[string]EventDefinition) (map[string]EventDefinition, error) {
	return mergeTables("event", existing, incoming, mergeEvent)
}

// MergeChannels folds incoming channels into existing ones, merging their
// message tables on a name collision.
func MergeChannels(existing, incoming map[string]ChannelDefinition) (map[string]ChannelDefinition, error) {
	return mergeTables("channel", existing, incoming, mergeChannel)
}

// mergeTables returns the key union of both tables. Keys present on one side
// are taken unchanged; keys present on both go through fn. Neither input is
// modified. Schema conflicts are returned unchanged, wrapped with the member
// name.
func mergeTables[T any](kind string, existing, incoming map[string]T, fn func(a, b T) (T, error)) (map[string]T, error) {
	out := make(map[string]T, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for _, k := range sortedKeys(incoming) {
		b := incoming[k]
		a, ok := out[k]
		if !ok {
			out[k] = b
			continue
		}
		merged, err := fn(a, b)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", kind, k, err)
		}
		out[k] = merged
	}
	return out, nil
}

func mergeAction(a, b ActionDefinition) (ActionDefinition, error) {
	input, err := schema.Merge(a.Input, b.Input)
	if err != nil {
		return ActionDefinition{}, fmt.Errorf("input: %w", err)
	}
	output, err := schema.Merge(a.Output, b.Output)
	if err != nil {
		return ActionDefinition{}, fmt.Errorf("output: %w", err)
	}
	return ActionDefinition{
		Title:       lastSet(a.Title, b.Title),
		Description: lastSet(a.Description, b.Description),
		Input:       input,
		Output:      output,
	}, nil
}

func mergeEvent(a, b EventDefinition) (EventDefinition, error) {
	payload, err := schema.Merge(a.Schema, b.Schema)
	if err != nil {
		return EventDefinition{}, err
	}
	return EventDefinition{
		Title:       lastSet(a.Title, b.Title),
		Description: lastSet(a.Description, b.Description),
		Schema:      payload,
	}, nil
}

func mergeChannel(a, b ChannelDefinition) (ChannelDefinition, error) {
	messages, err := mergeTables("message", a.Messages, b.Messages, mergeMessage)
	if err != nil {
		return ChannelDefinition{}, err
	}
	return ChannelDefinition{
		Title:       lastSet(a.Title, b.Title),
		Description: lastSet(a.Description, b.Description),
		Messages:    messages,
	}, nil
}

func mergeMessage(a, b MessageDefinition) (MessageDefinition, error) {
	s, err := schema.Merge(a.Schema, b.Schema)
	if err != nil {
		return MessageDefinition{}, err
	}
	return MessageDefinition{Schema: s}, nil
}

// lastSet implements last-write-wins for metadata. An unset value on the
// later contributor does not erase the earlier one.
func lastSet(a, b string) string {
	if b != "" {
		return b
	}
	return a
}
