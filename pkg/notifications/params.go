package notifications

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Params are query parameters sent with a fetch, such as a store's filter
// context ({"read": false}, {"category": "billing"}) or pagination
// ({"page": 2}). Values are scalars or slices of scalars.
type Params map[string]any

// Param keys understood by every transport.
const (
	ParamPage    = "page"
	ParamPerPage = "per_page"
)

// Clone returns a copy of p. A nil Params clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a new Params holding p overlaid with other; keys in other win.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other {
		out[k] = cloneValue(v)
	}
	return out
}

// Page returns the page parameter when it is present and numeric.
func (p Params) Page() (int, bool) { return p.Int(ParamPage) }

// Int reads key as an integer. Numeric strings are accepted.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool reads key as a boolean. "true"/"false" style strings are accepted.
func (p Params) Bool(key string) (bool, bool) {
	switch v := p[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

// String reads key as a string; other scalars are formatted.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Values encodes p as URL query values. Slices become repeated keys.
func (p Params) Values() url.Values {
	q := make(url.Values, len(p))
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := p[k].(type) {
		case nil:
		case []string:
			q[k] = append(q[k], v...)
		case []any:
			for _, item := range v {
				q.Add(k, fmt.Sprint(item))
			}
		default:
			q.Set(k, fmt.Sprint(v))
		}
	}
	return q
}

// ParamsFromValues converts query values back into Params. Single values
// become strings and repeated keys become []string.
func ParamsFromValues(q url.Values) Params {
	p := make(Params, len(q))
	for k, vs := range q {
		switch len(vs) {
		case 0:
		case 1:
			p[k] = vs[0]
		default:
			p[k] = slices.Clone(vs)
		}
	}
	return p
}
