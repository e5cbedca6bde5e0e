// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package engine

import (
	"context"
	"encoding/json"

	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/store"
)

// Snapshot converts the result into a store run and its entity rows.
func (r *Result) Snapshot() (store.Run, []store.Entry, error) {
	run := store.Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		Root:       r.Root,
		Files:      len(r.Files),
		Entities:   r.Registry.Len(),
		Warnings:   len(r.Diagnostics.Warnings()),
		Errors:     len(r.Diagnostics.Errors()),
		DurationMS: r.Duration.Milliseconds(),
	}

	var entries []store.Entry
	for _, g := range r.Registry.Groups() {
		for _, e := range g.Entities() {
			data, err := json.Marshal(e.ToHash())
			if err != nil {
				return run, nil, errors.Attr(errors.Wrap(err, errors.KindInternal, "failed to serialize entity"), "entity", e.Name())
			}
			base := e.Common()
			entries = append(entries, store.Entry{
				Group: g.Key(),
				Name:  e.Name(),
				File:  base.File,
				Line:  base.Line,
				Hash:  string(data),
			})
		}
	}
	return run, entries, nil
}

// Record persists the result to st.
func (r *Result) Record(ctx context.Context, st *store.Store) error {
	run, entries, err := r.Snapshot()
	if err != nil {
		return err
	}
	return st.RecordRun(ctx, run, entries)
}
