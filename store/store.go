package store

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smallnest/ontollm/ontology"
	"github.com/smallnest/ontollm/store/memory"
	"github.com/smallnest/ontollm/store/postgres"
	"github.com/smallnest/ontollm/store/sqlite"
)

// ErrUnsupportedURL is returned for store URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported store url")

// Open returns the store addressed by url with its schema initialised.
func Open(ctx context.Context, url string) (ontology.Store, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, errors.Wrap(ErrUnsupportedURL, "empty store url")
	case strings.HasPrefix(url, "memory://"):
		return memory.New(), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.New(ctx, postgres.Options{ConnString: url})
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.New(sqlite.Options{Path: strings.TrimPrefix(url, "sqlite://")})
	case strings.Contains(url, "://"):
		return nil, errors.Wrapf(ErrUnsupportedURL, "%q", url)
	default:
		return sqlite.New(sqlite.Options{Path: url})
	}
}
