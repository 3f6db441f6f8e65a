// Package slug turns free-form identifiers into canonical keys and back into
// display titles.
package slug

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the words of a key.
const Separator = '_'

// DefaultCacheSize is the number of identifiers a Normalizer remembers.
const DefaultCacheSize = 1024

// transliterations spells out letters that have no decomposition, so they
// are not dropped with the other non-ASCII characters.
var transliterations = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"Æ", "AE", "æ", "ae",
	"Œ", "OE", "œ", "oe",
	"Ø", "O", "ø", "o",
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d",
	"Ð", "D", "ð", "d",
	"Þ", "TH", "þ", "th",
	"ı", "i",
)

// Normalize returns the canonical key for identifier: lowercase ASCII
// letters and digits, with every other run of characters collapsed into a
// single Separator. Accents are stripped first, so "Café" and "cafe" share a
// key, and letters such as "ß" or "Ø" are spelled in ASCII. Input without
// any letters or digits yields "".
func Normalize(identifier string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	identifier = transliterations.Replace(identifier)
	folded, _, err := transform.String(t, identifier)
	if err != nil {
		folded = identifier
	}

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteRune(Separator)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// Titleize converts a key into a space separated, title cased string, e.g.
// "slow_query" becomes "Slow Query".
func Titleize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == Separator })
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// Normalizer memoizes Normalize for hot identifiers. It is safe for
// concurrent use.
type Normalizer struct {
	cache *lru.Cache
}

// NewNormalizer returns a Normalizer remembering up to size identifiers.
func NewNormalizer(size int) (*Normalizer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating key cache")
	}
	return &Normalizer{cache: c}, nil
}

// Normalize returns the canonical key for identifier.
func (n *Normalizer) Normalize(identifier string) string {
	if v, ok := n.cache.Get(identifier); ok {
		return v.(string)
	}
	key := Normalize(identifier)
	n.cache.Add(identifier, key)
	return key
}

// Len returns the number of cached identifiers.
func (n *Normalizer) Len() int {
	return n.cache.Len()
}
