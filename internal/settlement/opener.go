package settlement

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mmynk/tabshare/internal/apperr"
)

// Opener hands a payment link to whatever can handle it.
// Implementations return an error wrapping apperr.ErrExternalLinkUnavailable
// when no handler exists for the link.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// SchemeOpener "opens" links by writing them to W, but only for URI
// schemes it has a handler for.
type SchemeOpener struct {
	W       io.Writer
	Schemes []string
}

// NewSchemeOpener returns an opener for https links plus any extra schemes.
func NewSchemeOpener(w io.Writer, extra ...string) *SchemeOpener {
	return &SchemeOpener{W: w, Schemes: append([]string{"https"}, extra...)}
}

// CanOpen reports whether link's scheme is handled.
func (o *SchemeOpener) CanOpen(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" {
		return false
	}
	for _, s := range o.Schemes {
		if strings.EqualFold(s, u.Scheme) {
			return true
		}
	}
	return false
}

func (o *SchemeOpener) Open(ctx context.Context, link string) error {
	if !o.CanOpen(link) {
		return fmt.Errorf("%w: no handler for %q", apperr.ErrExternalLinkUnavailable, link)
	}
	if _, err := fmt.Fprintln(o.W, link); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrExternalLinkUnavailable, err)
	}
	return nil
}
