// Package i18n picks the shopper's locale and the currency prices are shown in.
package i18n

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"goflare.io/storefront/variant"
)

// CookieName is the cookie the UI stores an explicit locale choice in.
const CookieName = "NEXT_LOCALE"

type locale struct {
	tag       language.Tag
	currency  stripe.Currency
	formatter *variant.Formatter
}

// Bundle holds the supported locales and their message catalog. It is safe
// for concurrent use.
type Bundle struct {
	locales  []locale
	fallback locale
	catalog  *catalog.Builder
}

var defaultLocales = []struct {
	tag      language.Tag
	currency stripe.Currency
}{
	{language.English, stripe.CurrencyUSD},
	{language.Vietnamese, stripe.CurrencyVND},
}

// NewBundle loads the built-in locales. defaultLocale is used when nothing
// the client sends matches; it must be one of them.
func NewBundle(defaultLocale string) (*Bundle, error) {
	b := &Bundle{catalog: catalog.NewBuilder(catalog.Fallback(language.English))}

	for _, l := range defaultLocales {
		f, err := variant.NewFormatter(l.tag, l.currency)
		if err != nil {
			return nil, err
		}
		b.locales = append(b.locales, locale{tag: l.tag, currency: l.currency, formatter: f})
	}

	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("failed to load %s message %q: %w", tag, key, err)
			}
		}
	}

	fallback, ok := b.lookup(defaultLocale)
	if !ok {
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}
	b.fallback = fallback

	return b, nil
}

func (b *Bundle) Supported() []language.Tag {
	tags := make([]language.Tag, 0, len(b.locales))
	for _, l := range b.locales {
		tags = append(tags, l.tag)
	}
	return tags
}

func (b *Bundle) Default() language.Tag {
	return b.fallback.tag
}

// Negotiate resolves the locale from, in order, an explicit query value, the
// locale cookie and the Accept-Language header.
func (b *Bundle) Negotiate(query, cookie, acceptLanguage string) language.Tag {
	for _, candidate := range []string{query, cookie} {
		if l, ok := b.lookup(candidate); ok {
			return l.tag
		}
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err == nil {
		for _, tag := range tags {
			if l, ok := b.match(tag); ok {
				return l.tag
			}
		}
	}

	return b.fallback.tag
}

// Currency is the currency prices are displayed in for tag.
func (b *Bundle) Currency(tag language.Tag) stripe.Currency {
	return b.resolve(tag).currency
}

func (b *Bundle) Formatter(tag language.Tag) *variant.Formatter {
	return b.resolve(tag).formatter
}

// Message translates key. Unknown keys are returned as given.
func (b *Bundle) Message(tag language.Tag, key string, args ...any) string {
	p := message.NewPrinter(b.resolve(tag).tag, message.Catalog(b.catalog))
	return p.Sprintf(key, args...)
}

func (b *Bundle) resolve(tag language.Tag) locale {
	if l, ok := b.match(tag); ok {
		return l
	}
	return b.fallback
}

func (b *Bundle) lookup(s string) (locale, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return locale{}, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return locale{}, false
	}
	return b.match(tag)
}

// match compares base languages only, so en-GB is served as en.
func (b *Bundle) match(tag language.Tag) (locale, bool) {
	base, confidence := tag.Base()
	if confidence == language.No {
		return locale{}, false
	}
	for _, l := range b.locales {
		if lb, _ := l.tag.Base(); lb == base {
			return l, true
		}
	}
	return locale{}, false
}
