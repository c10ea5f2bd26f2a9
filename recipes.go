package graphydb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// Recipe is a named, reusable chain pattern with its default options,
// spec.md §6 "a library of named fetch patterns may be loaded from a
// recipe file so common traversals don't need to be re-typed."
type Recipe struct {
	Chain string   `toml:"chain"`
	Where []string `toml:"where,omitempty"`
	Order string   `toml:"order,omitempty"`
	Group string   `toml:"group,omitempty"`
}

// recipeFile is the on-disk TOML shape: a table of named recipes, mirroring
// the teacher's map-of-named-entries recipe-file layout.
type recipeFile struct {
	Recipes map[string]Recipe `toml:"recipes"`
}

// LoadRecipes parses a TOML recipe file into a name -> Recipe map.
func LoadRecipes(path string) (map[string]Recipe, error) {
	var rf recipeFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		if os.IsNotExist(err) {
			return map[string]Recipe{}, nil
		}
		return nil, fmt.Errorf("graphydb: load recipes %s: %w", path, err)
	}
	return rf.Recipes, nil
}

// recipeBook holds the graph's current named recipes plus the watcher that
// keeps them fresh when the backing file changes on disk.
type recipeBook struct {
	mu      sync.RWMutex
	path    string
	recipes map[string]Recipe
	watcher *fsnotify.Watcher
}

// watchRecipes loads path and starts an fsnotify watch that reloads it on
// every write, so a long-lived Graph picks up edited recipes without a
// restart (the teacher's show_display.go watches its data directory the
// same way).
func watchRecipes(path string) (*recipeBook, error) {
	recipes, err := LoadRecipes(path)
	if err != nil {
		return nil, err
	}
	rb := &recipeBook{path: path, recipes: recipes}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// A recipe file that can't be watched still works; it just won't
		// hot-reload. Not fatal to opening the graph.
		return rb, nil
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return rb, nil
	}
	rb.watcher = watcher

	go rb.watch()
	return rb, nil
}

func (rb *recipeBook) watch() {
	base := filepath.Base(rb.path)
	for {
		select {
		case event, ok := <-rb.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if recipes, err := LoadRecipes(rb.path); err == nil {
				rb.mu.Lock()
				rb.recipes = recipes
				rb.mu.Unlock()
			}
		case _, ok := <-rb.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (rb *recipeBook) get(name string) (Recipe, bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	r, ok := rb.recipes[name]
	return r, ok
}

func (rb *recipeBook) close() error {
	if rb == nil || rb.watcher == nil {
		return nil
	}
	return rb.watcher.Close()
}

// FetchRecipe runs a previously loaded named recipe, merging caller-supplied
// params into the recipe's own WHERE/ORDER/GROUP defaults. It fails like any
// unknown-name Fetch if no recipe file was configured or name isn't in it.
func (g *Graph) FetchRecipe(ctx context.Context, name string, params map[string]any) (*FetchResult, error) {
	if g.recipes == nil {
		return nil, newError(PatternError, fmt.Errorf("fetch recipe %q: no recipe file configured", name))
	}
	r, ok := g.recipes.get(name)
	if !ok {
		return nil, newError(PatternError, fmt.Errorf("fetch recipe %q: not found", name))
	}
	return g.Fetch(ctx, r.Chain, FetchOptions{
		Where:  r.Where,
		Params: params,
		Order:  r.Order,
		Group:  r.Group,
	})
}
