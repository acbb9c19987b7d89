package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

const mask = "***"

type piiMiddleware struct {
	ports.Store
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks every match of the
// patterns in task titles and bodies before they reach the store.
// Masking is one-way: reads return the masked text.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Store) ports.Store {
		return &piiMiddleware{Store: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Commit(ctx context.Context, cs domain.ChangeSet) error {
	if len(cs.Upserts) > 0 {
		// Copy, so the caller's rows keep their original text.
		masked := make([]domain.Task, len(cs.Upserts))
		for i, t := range cs.Upserts {
			t.Title = m.maskText(t.Title)
			t.Body = m.maskText(t.Body)
			masked[i] = t
		}
		cs.Upserts = masked
	}
	return m.Store.Commit(ctx, cs)
}

func (m *piiMiddleware) maskText(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, mask)
	}
	return s
}
