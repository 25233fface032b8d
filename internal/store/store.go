// Package store keeps small JSON-like records grouped in collections:
// build history, exported assets, edit presets and boards.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("store: record not found")

const (
	History = "history"
	Assets  = "assets"
	Presets = "presets"
	Boards  = "boards"
)

type Record struct {
	ID         string         `json:"id" yaml:"id"`
	Collection string         `json:"collection" yaml:"collection"`
	Data       map[string]any `json:"data" yaml:"data"`
	CreatedAt  time.Time      `json:"created_at" yaml:"created_at"`
}

type Store interface {
	// Put saves r, assigning an ID and CreatedAt when they are empty.
	Put(ctx context.Context, r *Record) error
	Get(ctx context.Context, collection, id string) (*Record, error)
	// List returns the newest records first; limit <= 0 means all.
	List(ctx context.Context, collection string, limit int) ([]*Record, error)
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

func prepare(r *Record) error {
	if r.Collection == "" {
		return errors.New("store: record has no collection")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func newestFirst(recs []*Record, limit int) []*Record {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
