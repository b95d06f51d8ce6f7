// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	standardCacheName = "msal.cache"
	caeCacheName      = "msal.cae.cache"
)

// FileLoader reads the shared cache from unencrypted files in a directory,
// one file per partition, using the file names shared with other Microsoft
// developer tools. Encrypted caches are out of scope here; decrypting
// loaders can implement Loader themselves.
type FileLoader struct {
	dir string
}

// NewFileLoader returns a FileLoader rooted at dir. An empty dir selects the
// conventional per-user location (~/.IdentityService).
func NewFileLoader(dir string) (FileLoader, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return FileLoader{}, fmt.Errorf("couldn't determine the shared cache directory: %w", err)
		}
		dir = filepath.Join(home, ".IdentityService")
	}
	return FileLoader{dir: dir}, nil
}

// Load implements Loader.
func (f FileLoader) Load(ctx context.Context, cache Unmarshaler, partition Partition) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	name := standardCacheName
	if partition == CAE {
		name = caeCacheName
	}
	b, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("couldn't read the shared cache: %w", err)
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := cache.Unmarshal(b); err != nil {
		return false, err
	}
	return true, nil
}
