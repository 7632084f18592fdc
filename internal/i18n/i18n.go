// Package i18n formats user-facing strings with named placeholders and
// resolves them against per-language catalogs.
//
// Placeholders follow three conventions:
//
//	@name   value is HTML-escaped
//	%name   value is HTML-escaped and wrapped in <em class="placeholder">
//	:name   value is treated as a URL, escaped, and stripped of unsafe schemes
//
// Values of type Markup are trusted and inserted without escaping.
package i18n

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// Markup is a string already safe for HTML output.
type Markup string

func (m Markup) String() string { return string(m) }

// Plain returns the text content of m with tags dropped and entities
// decoded, for terminal output.
func (m Markup) Plain() string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(string(m)))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			b.WriteString(z.Token().Data)
		}
	}
}

// Args maps placeholder names (including their prefix) to values.
type Args map[string]any

// Format substitutes placeholders in src, escaping values for HTML.
func Format(src string, args Args) Markup {
	return Markup(replace(src, args, true))
}

// FormatPlain substitutes placeholders without any HTML treatment, for log
// lines and terminal output.
func FormatPlain(src string, args Args) string {
	return replace(src, args, false)
}

func replace(src string, args Args, escape bool) string {
	if len(args) == 0 {
		return src
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	// Longest key first so "%title" never clobbers "%title_suffix".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, placeholderValue(k, args[k], escape))
	}
	return strings.NewReplacer(pairs...).Replace(src)
}

func placeholderValue(key string, value any, escape bool) string {
	raw, trusted := stringify(value)
	if !escape {
		return raw
	}

	switch {
	case strings.HasPrefix(key, "%"):
		if !trusted {
			raw = html.EscapeString(raw)
		}
		return `<em class="placeholder">` + raw + `</em>`
	case strings.HasPrefix(key, ":"):
		return html.EscapeString(StripDangerousProtocols(raw))
	default:
		if trusted {
			return raw
		}
		return html.EscapeString(raw)
	}
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case Markup:
		return string(v), true
	case string:
		return v, false
	case fmt.Stringer:
		return v.String(), false
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), false
	}
}

var allowedProtocols = []string{"http", "https", "mailto", "tel", "ftp"}

// StripDangerousProtocols removes a leading URL scheme unless it is on the
// allow list, so "javascript:alert(1)" renders as "alert(1)".
func StripDangerousProtocols(uri string) string {
	for {
		colon := strings.Index(uri, ":")
		if colon <= 0 {
			return uri
		}
		// A slash, question mark or hash before the colon means it is not a scheme.
		if strings.ContainsAny(uri[:colon], "/?#") {
			return uri
		}
		scheme := strings.ToLower(uri[:colon])
		for _, allowed := range allowedProtocols {
			if scheme == allowed {
				return uri
			}
		}
		uri = uri[colon+1:]
	}
}

// Well-known language codes that never name a real language.
const (
	LangcodeNotSpecified  = "und"
	LangcodeNotApplicable = "zxx"
)

// Translator holds the configured content languages and the string
// catalogs used to localise interface text. Copies made with In share the
// catalogs and differ only in the interface language.
type Translator struct {
	defaultLang   language.Tag
	interfaceLang language.Tag
	languages     []language.Tag
	matcher       language.Matcher
	catalogs      *catalogs
}

type catalogs struct {
	mu      sync.RWMutex
	entries map[language.Tag]map[string]string
}

// NewTranslator validates the configured language codes. The default
// langcode is always listed first.
func NewTranslator(defaultLangcode string, langcodes []string) (*Translator, error) {
	def, err := language.Parse(defaultLangcode)
	if err != nil {
		return nil, fmt.Errorf("invalid default langcode %q: %w", defaultLangcode, err)
	}

	tags := []language.Tag{def}
	for _, code := range langcodes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid langcode %q: %w", code, err)
		}
		if tag == def {
			continue
		}
		tags = append(tags, tag)
	}

	return &Translator{
		defaultLang:   def,
		interfaceLang: def,
		languages:     tags,
		matcher:       language.NewMatcher(tags),
		catalogs:      &catalogs{entries: make(map[language.Tag]map[string]string)},
	}, nil
}

// In returns a translator whose empty-langcode lookups resolve against
// langcode instead of the default language. Unparseable codes keep the
// current interface language.
func (t *Translator) In(langcode string) *Translator {
	c := *t
	if tag, err := language.Parse(langcode); err == nil {
		c.interfaceLang = tag
	}
	return &c
}

// Langcode returns the interface language code.
func (t *Translator) Langcode() string {
	return t.interfaceLang.String()
}

// DefaultLangcode returns the site default language code.
func (t *Translator) DefaultLangcode() string {
	return t.defaultLang.String()
}

// Langcodes returns all configured language codes, default first.
func (t *Translator) Langcodes() []string {
	codes := make([]string, len(t.languages))
	for i, tag := range t.languages {
		codes[i] = tag.String()
	}
	return codes
}

// IsConfigured reports whether langcode is one of the content languages.
func (t *Translator) IsConfigured(langcode string) bool {
	tag, err := language.Parse(langcode)
	if err != nil {
		return false
	}
	for _, l := range t.languages {
		if l == tag {
			return true
		}
	}
	return false
}

// Negotiate picks the best configured language for an Accept-Language
// header value, falling back to the default language.
func (t *Translator) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.DefaultLangcode()
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.DefaultLangcode()
	}
	_, index, confidence := t.matcher.Match(prefs...)
	if confidence == language.No {
		return t.DefaultLangcode()
	}
	return t.languages[index].String()
}

// LanguageName returns the English name of a language code.
func (t *Translator) LanguageName(langcode string) string {
	tag, err := language.Parse(langcode)
	if err != nil {
		return langcode
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return langcode
}

// AddTranslation registers the translation of a source string.
func (t *Translator) AddTranslation(langcode, source, translation string) error {
	tag, err := language.Parse(langcode)
	if err != nil {
		return fmt.Errorf("invalid langcode %q: %w", langcode, err)
	}
	c := t.catalogs
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[tag] == nil {
		c.entries[tag] = make(map[string]string)
	}
	c.entries[tag][source] = translation
	return nil
}

//go:embed catalogs/*.yaml
var builtin embed.FS

// Builtin returns the catalogs shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "catalogs")
	if err != nil {
		panic(err)
	}
	return sub
}

const catalogPattern = "*.{yaml,yml}"

// LoadCatalogs reads every <langcode>.yaml file at the top of fsys. Each
// file maps source strings to their translation; later files override
// earlier entries. It returns the number of entries loaded.
func (t *Translator) LoadCatalogs(fsys fs.FS) (int, error) {
	matches, err := doublestar.Glob(fsys, catalogPattern)
	if err != nil {
		return 0, fmt.Errorf("failed to scan catalogs: %w", err)
	}
	sort.Strings(matches)

	loaded := 0
	for _, name := range matches {
		langcode := strings.TrimSuffix(name, path.Ext(name))
		if _, err := language.Parse(langcode); err != nil {
			return loaded, fmt.Errorf("catalog %s: invalid langcode %q", name, langcode)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return loaded, fmt.Errorf("failed to read catalog %s: %w", name, err)
		}
		var entries map[string]string
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return loaded, fmt.Errorf("failed to parse catalog %s: %w", name, err)
		}
		for source, translation := range entries {
			if translation == "" {
				continue
			}
			if err := t.AddTranslation(langcode, source, translation); err != nil {
				return loaded, err
			}
			loaded++
		}
	}
	return loaded, nil
}

// T translates src into langcode (when a catalog entry exists) and formats
// the placeholders. An empty langcode uses the interface language.
func (t *Translator) T(langcode, src string, args Args) Markup {
	return Format(t.lookup(langcode, src), args)
}

func (t *Translator) lookup(langcode, src string) string {
	if t == nil {
		return src
	}
	tag := t.interfaceLang
	if langcode != "" {
		if parsed, err := language.Parse(langcode); err == nil {
			tag = parsed
		}
	}
	c := t.catalogs
	c.mu.RLock()
	defer c.mu.RUnlock()
	if translated, ok := c.entries[tag][src]; ok {
		return translated
	}
	return src
}
