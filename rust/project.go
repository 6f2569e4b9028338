/*
 * Copyright (c) 2025 The XGo Authors (xgo.dev). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rust holds the in-memory set of Rust source files a session works
// on, with lazily built per-file syntax and index caches.
package rust

import (
	"io/fs"
	"iter"
	"maps"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const (
	// FeatSyntaxCache enables syntax tree cache building.
	FeatSyntaxCache = 1 << iota

	// FeatIndexCache enables declaration index cache building. It implies
	// FeatSyntaxCache.
	FeatIndexCache

	// FeatAll enables all features.
	FeatAll = FeatSyntaxCache | FeatIndexCache
)

// cacheFeature maps a feature flag to the cache it enables.
type cacheFeature struct {
	flag    uint
	kind    CacheKind
	builder FileCacheBuilder
}

var builtinCacheFeatures = []cacheFeature{
	{FeatSyntaxCache | FeatIndexCache, syntaxFileCacheKind{}, buildSyntaxFileCache},
	{FeatIndexCache, indexCacheKind{}, buildIndexCache},
}

// File is a source file in a [Project].
type File struct {
	Content []byte
	Version int
}

// Project is a set of Rust source files keyed by slash-separated path.
type Project struct {
	mu            sync.RWMutex
	files         map[string]*File
	filesSnapshot atomic.Pointer[map[string]*File]

	fileCacheBuilders map[CacheKind]FileCacheBuilder
	fileCaches        map[fileCacheKey]dataOrErr
	fileCacheSFG      singleflight.Group
}

// NewProject creates a project with optional initial files and features.
func NewProject(files map[string]*File, feats uint) *Project {
	proj := &Project{
		files:             make(map[string]*File),
		fileCacheBuilders: make(map[CacheKind]FileCacheBuilder),
		fileCaches:        make(map[fileCacheKey]dataOrErr),
	}
	if files != nil {
		maps.Copy(proj.files, files)
	}
	proj.updateFilesSnapshot()
	for _, feat := range builtinCacheFeatures {
		if feat.flag&feats != 0 {
			proj.RegisterFileCacheBuilder(feat.kind, feat.builder)
		}
	}
	return proj
}

// Files returns an iterator over all path-file pairs in the project.
func (p *Project) Files() iter.Seq2[string, *File] {
	snapshot := p.filesSnapshot.Load()
	return maps.All(*snapshot)
}

// File gets a file from the project.
func (p *Project) File(path string) (file *File, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	file, ok = p.files[path]
	return
}

// PutFile puts a file into the project, replacing any previous version and
// invalidating its caches.
func (p *Project) PutFile(path string, file *File) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[path] = file
	p.updateFilesSnapshot()
	p.deleteFileCache(path)
}

// DeleteFile deletes a file from the project.
func (p *Project) DeleteFile(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.files[path]; !ok {
		return fs.ErrNotExist
	}
	delete(p.files, path)
	p.updateFilesSnapshot()
	p.deleteFileCache(path)
	return nil
}

// updateFilesSnapshot publishes an immutable copy of the file map for
// lock-free iteration.
func (p *Project) updateFilesSnapshot() {
	snapshot := maps.Clone(p.files)
	p.filesSnapshot.Store(&snapshot)
}
