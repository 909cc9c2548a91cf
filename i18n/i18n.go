// Package i18n loads message catalogs and negotiates the display locale.
//
// Catalogs are flat YAML maps from message key to text, one file per
// locale named <tag>.yaml. English and German ship embedded; additional
// directories are layered on top with [Bundle.LoadDir].
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Bundle holds the catalogs of every loaded locale.
type Bundle struct {
	mu       sync.RWMutex
	fallback language.Tag
	tags     []language.Tag
	catalogs map[language.Tag]map[string]string
	matcher  language.Matcher
}

// New returns a bundle seeded with the embedded catalogs. defaultLocale is
// used when nothing requested matches and for keys missing from the
// matched catalog.
func New(defaultLocale string) (*Bundle, error) {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: default locale: %w", err)
	}

	b := &Bundle{
		fallback: fallback,
		catalogs: make(map[language.Tag]map[string]string),
	}
	if err := b.loadFS(embedded, "locales"); err != nil {
		return nil, err
	}
	if _, ok := b.catalogs[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no catalog for default locale %q", defaultLocale)
	}
	return b, nil
}

// LoadDir merges every <locale>.yaml file in dir into the bundle. Keys in
// later files overwrite earlier ones.
func (b *Bundle) LoadDir(dir string) error {
	return b.loadFS(os.DirFS(dir), ".")
}

// Add merges one catalog.
func (b *Bundle) Add(locale string, data []byte) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("i18n: locale %q: %w", locale, err)
	}
	var messages map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: catalog %q: %w", locale, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Catalogs are replaced, never mutated, so localizers can keep
	// referencing the map they were built with.
	previous, ok := b.catalogs[tag]
	if !ok {
		b.tags = append(b.tags, tag)
		b.matcher = nil
	}
	merged := make(map[string]string, len(previous)+len(messages))
	for k, v := range previous {
		merged[k] = v
	}
	for k, v := range messages {
		merged[k] = v
	}
	b.catalogs[tag] = merged
	return nil
}

func (b *Bundle) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("i18n: read catalogs: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		if err := b.Add(strings.TrimSuffix(name, ext), data); err != nil {
			return err
		}
	}
	return nil
}

// Locales returns the loaded locale tags.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.tags))
	for _, tag := range b.tags {
		out = append(out, tag.String())
	}
	return out
}

// Localizer returns a translator for the best match of the preferences,
// given as locale tags or Accept-Language header values.
func (b *Bundle) Localizer(preferences ...string) *Localizer {
	b.mu.Lock()
	if b.matcher == nil {
		tags := make([]language.Tag, 0, len(b.tags)+1)
		tags = append(tags, b.fallback)
		for _, tag := range b.tags {
			if tag != b.fallback {
				tags = append(tags, tag)
			}
		}
		b.matcher = language.NewMatcher(tags)
		b.tags = tags
	}
	matcher, tags := b.matcher, b.tags
	b.mu.Unlock()

	var wanted []language.Tag
	for _, pref := range preferences {
		parsed, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}
		wanted = append(wanted, parsed...)
	}

	tag := b.fallback
	if len(wanted) > 0 {
		_, index, confidence := matcher.Match(wanted...)
		if confidence > language.No {
			tag = tags[index]
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Localizer{
		tag:      tag,
		messages: b.catalogs[tag],
		fallback: b.catalogs[b.fallback],
	}
}

// Localizer translates keys in one locale.
type Localizer struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// Locale returns the matched locale tag.
func (l *Localizer) Locale() string {
	return l.tag.String()
}

// Translate returns the text for key, falling back to the default locale
// and finally to the key itself.
func (l *Localizer) Translate(key string) string {
	if l == nil {
		return key
	}
	if text, ok := l.messages[key]; ok && text != "" {
		return text
	}
	if text, ok := l.fallback[key]; ok && text != "" {
		return text
	}
	return key
}
