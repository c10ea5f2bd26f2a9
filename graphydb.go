// Package graphydb is an embedded graph database: a directed multigraph of
// attributed nodes and edges persisted on a relational engine, queried
// through a small chain-pattern language and mutated through a reversible
// change journal. See spec.md for the full design; this file wires the
// lower internal/* packages into the public Graph handle.
package graphydb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orneryd/graphydb/internal/item"
	"github.com/orneryd/graphydb/internal/journal"
	"github.com/orneryd/graphydb/internal/store"
)

// Graph owns the single connection backing a graph database, per spec.md §5
// "the connection is owned by the graph handle and released when the
// handle is dropped."
type Graph struct {
	adapter *store.Adapter
	applier journal.Applier
	recipes *recipeBook
}

// Open opens (creating if absent) the database at path and ensures its
// base schema exists. path may be a filesystem path, a "file:" URI, or
// ":memory:" for an ephemeral graph.
func Open(path string) (*Graph, error) {
	return OpenConfig(Config{Path: path})
}

// OpenConfig opens a graph using the full Config surface (path, busy
// timeout, recipe path; foreign keys are always enforced), spec.md's external-interface
// "constructors for graph" plus SPEC_FULL.md §A.3's configuration layer.
func OpenConfig(cfg Config) (*Graph, error) {
	adapter, err := store.Open(store.Config{Path: cfg.Path, BusyTimeout: cfg.BusyTimeout})
	if err != nil {
		return nil, err
	}
	if err := adapter.Reset(); err != nil {
		_ = adapter.Close()
		return nil, err
	}
	g := &Graph{adapter: adapter}
	g.applier = graphApplier{adapter: adapter}

	if cfg.RecipesPath != "" {
		rb, err := watchRecipes(cfg.RecipesPath)
		if err != nil {
			_ = adapter.Close()
			return nil, err
		}
		g.recipes = rb
	}
	return g, nil
}

// Close releases the underlying connection and stops any recipe-file
// watch started by OpenConfig.
func (g *Graph) Close() error {
	_ = g.recipes.close()
	return g.adapter.Close()
}

// Stats reports row counts, per-kind breakdowns, file size and journal
// length, spec.md §4.7.
func (g *Graph) Stats(ctx context.Context) (*store.Stats, error) {
	return g.adapter.Stats(ctx)
}

// ResetFTS rebuilds the node and edge FTS5 virtual tables over the given
// attribute field names, spec.md §4.7.
func (g *Graph) ResetFTS(ctx context.Context, nodeFields, edgeFields []string) error {
	return g.adapter.ResetFTS(ctx, nodeFields, edgeFields)
}

// Undo reverses the most recent batch of changes (or the single most
// recent change, if it carries no batch), spec.md §4.5. It returns the
// (action, uid) pairs performed in application order.
func (g *Graph) Undo(ctx context.Context) ([]journal.Action, error) {
	actions, err := journal.Undo(ctx, g.adapter.DB(), g.applier)
	if err != nil {
		if errors.Is(err, journal.ErrUnknownUndoAction) {
			return actions, newError(UnknownUndoAction, err)
		}
		return actions, err
	}
	return actions, nil
}

// graphApplier bridges journal.Undo's narrow Applier interface to the real
// item operations, kept in this file (rather than internal/journal) to
// avoid the store<->item<->journal import cycle journal's own doc comment
// describes.
type graphApplier struct {
	adapter *store.Adapter
}

func (a graphApplier) DeleteItem(ctx context.Context, uid string) error {
	if ok, err := store.NodeExists(ctx, a.adapter.DB(), uid); err != nil {
		return err
	} else if ok {
		return a.adapter.WithTx(ctx, func(tx *sql.Tx) error {
			if err := store.DeleteNode(ctx, tx, uid); err != nil {
				return err
			}
			return store.DeleteFTS(ctx, tx, "node", uid)
		})
	}
	if ok, err := store.EdgeExists(ctx, a.adapter.DB(), uid); err != nil {
		return err
	} else if ok {
		return a.adapter.WithTx(ctx, func(tx *sql.Tx) error {
			if err := store.DeleteEdge(ctx, tx, uid); err != nil {
				return err
			}
			return store.DeleteFTS(ctx, tx, "edge", uid)
		})
	}
	return fmt.Errorf("undo: delete %s: %w", uid, journal.ErrUnknownUndoAction)
}

func (a graphApplier) RecreateItem(ctx context.Context, uid string, attrs map[string]any, isEdge bool) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	var it *item.Item
	if isEdge {
		it, err = item.FromEdgeData(a.adapter, data, nil)
	} else {
		it, err = item.FromNodeData(a.adapter, data, nil)
	}
	if err != nil {
		return err
	}
	return it.Save(ctx, true, "", false)
}

func (a graphApplier) PatchItem(ctx context.Context, uid string, removeKeys []string, restoreAttrs map[string]any) error {
	it, err := a.loadEither(ctx, uid)
	if err != nil {
		return err
	}
	for _, k := range removeKeys {
		if k == "mtime" {
			continue
		}
		it.DeleteAttr(k)
	}
	for k, v := range restoreAttrs {
		if k == "mtime" {
			continue
		}
		it.Set(k, v)
	}
	if mtime, ok := restoreAttrs["mtime"]; ok {
		it.RestoreMtime(mtime)
	}
	return it.Save(ctx, true, "", false)
}

func (a graphApplier) loadEither(ctx context.Context, uid string) (*item.Item, error) {
	it, err := item.LoadNode(ctx, a.adapter, uid)
	if err == nil {
		return it, nil
	}
	if !store.IsNotFound(err) {
		return nil, err
	}
	it, err = item.LoadEdge(ctx, a.adapter, uid)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("undo: patch %s: %w", uid, journal.ErrUnknownUndoAction)
		}
		return nil, err
	}
	return it, nil
}
