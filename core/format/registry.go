package format

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
)

// registry holds all registered formats.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Format)
	aliases    = make(map[string]string)
	extensions = make(map[string]string)
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
}

// Register adds a format to the registry. Names, aliases and extensions are
// case-insensitive; a name or alias already taken is rejected.
func Register(f *Format) error {
	if f == nil || f.Converter == nil {
		return tmerrors.NewValidation("format", "format must have a converter")
	}
	name := normalize(f.Name)
	if name == "" {
		return tmerrors.NewValidation("name", "format name is required")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[name]; ok {
		return fmt.Errorf("format %q: %w", name, tmerrors.ErrAlreadyExists)
	}
	if _, ok := aliases[name]; ok {
		return fmt.Errorf("format %q: %w", name, tmerrors.ErrAlreadyExists)
	}
	for _, a := range f.Aliases {
		a = normalize(a)
		if _, ok := registry[a]; ok {
			return fmt.Errorf("alias %q: %w", a, tmerrors.ErrAlreadyExists)
		}
		if _, ok := aliases[a]; ok {
			return fmt.Errorf("alias %q: %w", a, tmerrors.ErrAlreadyExists)
		}
	}

	registry[name] = f
	for _, a := range f.Aliases {
		aliases[normalize(a)] = name
	}
	for _, ext := range f.Extensions {
		ext = normalize(ext)
		if _, ok := extensions[ext]; !ok {
			extensions[ext] = name
		}
	}
	return nil
}

// MustRegister is like Register but panics on error. It is meant for init
// functions.
func MustRegister(f *Format) {
	if err := Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns a format by name, alias or extension.
func Lookup(name string) (*Format, error) {
	key := normalize(name)

	registryMu.RLock()
	defer registryMu.RUnlock()

	if f, ok := registry[key]; ok {
		return f, nil
	}
	if canonical, ok := aliases[key]; ok {
		return registry[canonical], nil
	}
	if canonical, ok := extensions[key]; ok {
		return registry[canonical], nil
	}
	return nil, tmerrors.NewNotFound("format", name)
}

// ByExtension returns the format registered for a file extension or a path
// ending in one.
func ByExtension(pathOrExt string) (*Format, error) {
	ext := pathOrExt
	if i := strings.LastIndex(pathOrExt, "."); i >= 0 {
		ext = pathOrExt[i+1:]
	}
	key := normalize(ext)

	registryMu.RLock()
	defer registryMu.RUnlock()

	if canonical, ok := extensions[key]; ok {
		return registry[canonical], nil
	}
	return nil, tmerrors.NewNotFound("format for extension", ext)
}

// Has checks if a format with the given name or alias exists.
func Has(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// List returns all registered formats sorted by name.
func List() []*Format {
	registryMu.RLock()
	result := make([]*Format, 0, len(registry))
	for _, f := range registry {
		result = append(result, f)
	}
	registryMu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Unregister removes a format together with its aliases and extensions.
func Unregister(name string) {
	key := normalize(name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	delete(registry, key)
	for a, c := range aliases {
		if c == key {
			delete(aliases, a)
		}
	}
	for e, c := range extensions {
		if c == key {
			delete(extensions, e)
		}
	}
}
