package engine

import (
	"context"
	"fmt"

	"github.com/lazypower/affect/internal/params"
	"github.com/rs/zerolog/log"
)

// Loader fetches modulation rows from a params.Provider. Rows live under
// <namespace>/<node>/<row>.
type Loader struct {
	provider  params.Provider
	namespace string
	node      string
}

// NewLoader creates a Loader. A nil provider yields no rows.
func NewLoader(p params.Provider, namespace, node string) *Loader {
	return &Loader{provider: p, namespace: namespace, node: node}
}

// Prefix returns the path all rows of this loader live under.
func (l *Loader) Prefix() string {
	return params.Prefix(l.namespace, l.node)
}

// Path returns the lookup path of a row.
func (l *Loader) Path(row string) string {
	return params.Path(l.namespace, l.node, row)
}

// Load returns the normalized factors of a row. An absent or empty row
// returns (nil, nil). A malformed entry is logged and kept with factor 0 so
// its emotion is still registered.
func (l *Loader) Load(ctx context.Context, row string) (map[string]float64, error) {
	if l.provider == nil {
		return nil, nil
	}
	p := l.Path(row)
	entries, err := l.provider.Lookup(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load row %s: %w", row, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	factors := make(map[string]float64, len(entries))
	for emotion, v := range entries {
		f, ok := params.Factor(v)
		if !ok {
			log.Warn().Str("path", p).Str("emotion", emotion).Interface("value", v).
				Msg("malformed modulation factor, using 0")
			f = 0
		}
		factors[emotion] = f
	}
	return factors, nil
}
