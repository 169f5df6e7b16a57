// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the calendar collections as whole JSON documents.
// Every collection is read and written in full; a mutex per collection
// serializes access so read-modify-write cycles cannot lose updates.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrStorage matches every error caused by an unreadable, corrupt or
// unwritable backing document.
var ErrStorage = errors.New("storage error")

// StorageError describes a failed operation on a backing document.
type StorageError struct {
	Collection string
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) true for any StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Repository is whole-document access to one collection.
type Repository[D any] interface {
	// Load returns the full document, creating it with the collection
	// defaults if it does not exist yet.
	Load(ctx context.Context) (D, error)

	// Save overwrites the full document.
	Save(ctx context.Context, doc D) error

	// Update loads the document, applies fn and saves the result while
	// holding the collection lock. If fn returns an error nothing is written.
	Update(ctx context.Context, fn func(doc *D) error) error
}

// Collection is a Repository backed by a JSON file.
type Collection[D any] struct {
	name     string
	path     string
	defaults func() (D, error)
	mu       sync.Mutex
}

// NewCollection creates a collection stored at path. defaults builds the
// document written on first load.
func NewCollection[D any](name, path string, defaults func() (D, error)) *Collection[D] {
	return &Collection[D]{
		name:     name,
		path:     path,
		defaults: defaults,
	}
}

// Load implements Repository.
func (c *Collection[D]) Load(ctx context.Context) (D, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		var zero D
		return zero, err
	}
	return c.load()
}

// Save implements Repository.
func (c *Collection[D]) Save(ctx context.Context, doc D) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.write(c.path, doc)
}

// Update implements Repository.
func (c *Collection[D]) Update(ctx context.Context, fn func(doc *D) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := c.load()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return c.write(c.path, doc)
}

// Snapshot writes a copy of the current document into dir.
func (c *Collection[D]) Snapshot(ctx context.Context, dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := c.load()
	if err != nil {
		return err
	}
	return c.write(filepath.Join(dir, filepath.Base(c.path)), doc)
}

// load reads the document. Callers must hold c.mu.
func (c *Collection[D]) load() (D, error) {
	var doc D

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc, err = c.defaults()
		if err != nil {
			return doc, &StorageError{Collection: c.name, Op: "initialize", Err: err}
		}
		if err := c.write(c.path, doc); err != nil {
			return doc, err
		}
		slog.Info("initialized collection", "collection", c.name, "path", c.path)
		return doc, nil
	}
	if err != nil {
		return doc, &StorageError{Collection: c.name, Op: "read", Err: err}
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, &StorageError{Collection: c.name, Op: "parse", Err: err}
	}
	return doc, nil
}

// write replaces the file at path through a temporary file and rename, so a
// crash mid-write never leaves a truncated document behind.
func (c *Collection[D]) write(path string, doc D) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Collection: c.name, Op: "encode", Err: err}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return &StorageError{Collection: c.name, Op: "write", Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
