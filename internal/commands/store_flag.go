package commands

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/bellfeed/pkg/notifications"
)

// StoreSpec is a store registration parsed from --store.
type StoreSpec struct {
	ID     string
	Params notifications.Params
}

// ParseStoreSpec parses "id" or "id=key:value,key:value". Repeated keys
// collect into a list.
func ParseStoreSpec(raw string) (StoreSpec, error) {
	id, rest, hasParams := strings.Cut(strings.TrimSpace(raw), "=")
	id = strings.TrimSpace(id)
	if id == "" {
		return StoreSpec{}, fmt.Errorf("store %q: missing id", raw)
	}

	spec := StoreSpec{ID: id, Params: notifications.Params{}}
	if !hasParams {
		return spec, nil
	}

	for pair := range strings.SplitSeq(rest, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return StoreSpec{}, fmt.Errorf("store %q: want key:value, got %q", id, pair)
		}
		value = strings.TrimSpace(value)

		switch prev := spec.Params[key].(type) {
		case nil:
			spec.Params[key] = value
		case string:
			spec.Params[key] = []string{prev, value}
		case []string:
			spec.Params[key] = append(prev, value)
		}
	}
	return spec, nil
}

// ParseStoreSpecs parses every flag value and rejects duplicate ids.
func ParseStoreSpecs(raw []string) ([]StoreSpec, error) {
	seen := make(map[string]bool, len(raw))
	specs := make([]StoreSpec, 0, len(raw))
	for _, r := range raw {
		spec, err := ParseStoreSpec(r)
		if err != nil {
			return nil, err
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("store %q registered twice", spec.ID)
		}
		seen[spec.ID] = true
		specs = append(specs, spec)
	}
	return specs, nil
}
