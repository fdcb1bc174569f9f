// Package i18n resolves UI translation keys against per-language JSON
// catalogs. Keys are dotted paths ("brand.name") into nested objects; a key
// that cannot be resolved is echoed back verbatim so a missing translation
// never blanks a label.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Catalog loads and caches language bundles from a locales directory.
// Loaded bundles are memoized for the catalog lifetime; a language whose
// file cannot be read falls back to the default language, and if the
// default cannot be read either, every lookup echoes its key.
type Catalog struct {
	mu      sync.RWMutex
	dir     string
	def     string
	current string
	bundles map[string]map[string]interface{}
}

// NewCatalog creates a catalog reading <lang>.json files from dir. The
// default language doubles as the initial current language.
func NewCatalog(dir, defaultLang string) *Catalog {
	return &Catalog{
		dir:     dir,
		def:     defaultLang,
		current: defaultLang,
		bundles: make(map[string]map[string]interface{}),
	}
}

// DefaultLanguage returns the configured fallback language.
func (c *Catalog) DefaultLanguage() string { return c.def }

// Language returns the process-wide current language.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetLanguage switches the current language. The bundle for the new
// language is loaded lazily on the next lookup (cached loads are reused).
func (c *Catalog) SetLanguage(lang string) {
	c.mu.Lock()
	c.current = lang
	c.mu.Unlock()
}

// load returns the raw bundle for lang, reading and memoizing it on first
// use. Only successful loads are cached, so a transient read failure does
// not poison the catalog.
func (c *Catalog) load(lang string) (map[string]interface{}, error) {
	c.mu.RLock()
	b, ok := c.bundles[lang]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	data, err := os.ReadFile(filepath.Join(c.dir, lang+".json"))
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", lang, err)
	}
	var bundle map[string]interface{}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", lang, err)
	}

	c.mu.Lock()
	c.bundles[lang] = bundle
	c.mu.Unlock()
	return bundle, nil
}

// bundleOrFallback resolves lang's bundle, falling back once to the default
// language. When neither loads, an empty bundle is returned.
func (c *Catalog) bundleOrFallback(lang string) map[string]interface{} {
	if b, err := c.load(lang); err == nil {
		return b
	}
	if lang != c.def {
		if b, err := c.load(c.def); err == nil {
			return b
		}
	}
	return map[string]interface{}{}
}

// Resolve looks up a dotted key in the given language. A missing segment or
// a non-string leaf returns the key itself.
func (c *Catalog) Resolve(key, lang string) string {
	var node interface{} = c.bundleOrFallback(lang)

	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return key
		}
		node, ok = m[part]
		if !ok {
			return key
		}
	}

	if s, ok := node.(string); ok {
		return s
	}
	return key
}

// T resolves a key in the current language.
func (c *Catalog) T(key string) string {
	return c.Resolve(key, c.Language())
}

// Flatten returns the bundle for lang as a flat dotted-key map, suitable
// for shipping to a client in one response.
func (c *Catalog) Flatten(lang string) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", c.bundleOrFallback(lang))
	return out
}

func flattenInto(out map[string]string, prefix string, node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			flattenInto(out, p, child)
		}
	case string:
		if prefix != "" {
			out[prefix] = v
		}
	}
}
