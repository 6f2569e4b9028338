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

package rust

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// ErrUnknownCacheKind represents an error of unknown cache kind.
var ErrUnknownCacheKind = errors.New("unknown cache kind")

// FileCacheBuilder builds a file level cache.
type FileCacheBuilder = func(proj *Project, path string, file *File) (any, error)

// CacheKind represents a kind of cache.
type CacheKind = any

// fileCacheKey identifies a cache entry of one kind for one file.
type fileCacheKey struct {
	kind CacheKind
	path string
}

// RegisterFileCacheBuilder registers a file level cache builder.
//
// The kind should be a comparable value private to the registering package:
//
//	type myCacheKind struct{}
//
//	proj.RegisterFileCacheBuilder(myCacheKind{}, myBuilder)
func (p *Project) RegisterFileCacheBuilder(kind CacheKind, builder FileCacheBuilder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fileCacheBuilders[kind] = builder
}

// FileCache gets a file level cache, building it on first use. Concurrent
// callers share one build.
func (p *Project) FileCache(kind CacheKind, path string) (any, error) {
	key := fileCacheKey{kind, path}

	p.mu.RLock()
	v, ok := p.fileCaches[key]
	p.mu.RUnlock()
	if ok {
		return decodeDataOrErr(v)
	}

	data, err, _ := p.fileCacheSFG.Do(fmt.Sprintf("%T-%v-%s", kind, kind, path), func() (any, error) {
		p.mu.RLock()
		builder, ok := p.fileCacheBuilders[kind]
		file, fileExists := p.files[path]
		p.mu.RUnlock()
		if !ok {
			return nil, ErrUnknownCacheKind
		}
		if !fileExists {
			return nil, fs.ErrNotExist
		}

		data, err := builder(p, path, file)

		p.mu.Lock()
		// The file may have been replaced while building.
		if cur, ok := p.files[path]; ok && cur == file {
			p.fileCaches[key] = encodeDataOrErr(data, err)
		}
		p.mu.Unlock()

		return data, err
	})
	return data, err
}

// deleteFileCache drops all caches of path. The caller holds p.mu.
func (p *Project) deleteFileCache(path string) {
	for kind := range p.fileCacheBuilders {
		delete(p.fileCaches, fileCacheKey{kind, path})
	}
}

// dataOrErr is a cached value: either the built data or the build error.
type dataOrErr = any

func encodeDataOrErr(data any, err error) dataOrErr {
	if err != nil {
		return err
	}
	return data
}

func decodeDataOrErr(v dataOrErr) (any, error) {
	if err, ok := v.(error); ok {
		return nil, err
	}
	return v, nil
}

// syntaxFileCacheKind is a cache kind type for [syntax.File].
type syntaxFileCacheKind struct{}

func buildSyntaxFileCache(proj *Project, path string, file *File) (any, error) {
	return syntax.Parse(context.Background(), path, file.Content)
}

// SyntaxFile retrieves the parsed [syntax.File] of path. A file with syntax
// errors still yields a tree; its errors are listed in [syntax.File.Errors].
func (p *Project) SyntaxFile(path string) (*syntax.File, error) {
	v, err := p.FileCache(syntaxFileCacheKind{}, path)
	if err != nil {
		return nil, err
	}
	return v.(*syntax.File), nil
}

// indexCacheKind is a cache kind type for [resolve.Index].
type indexCacheKind struct{}

func buildIndexCache(proj *Project, path string, file *File) (any, error) {
	f, err := proj.SyntaxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return resolve.NewIndex(f), nil
}

// Index retrieves the declaration index of path.
func (p *Project) Index(path string) (*resolve.Index, error) {
	v, err := p.FileCache(indexCacheKind{}, path)
	if err != nil {
		return nil, err
	}
	return v.(*resolve.Index), nil
}
