// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// capture records what the loader feeds the in-memory cache.
type capture struct {
	got []byte
	err error
}

func (c *capture) Unmarshal(b []byte) error {
	c.got = b
	return c.err
}

func TestFileLoaderAbsent(t *testing.T) {
	loader, err := NewFileLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLoader: %s", err)
	}
	found, err := loader.Load(context.Background(), &capture{}, Standard)
	if err != nil {
		t.Fatalf("got err == %s, want err == nil", err)
	}
	if found {
		t.Fatal("got found == true for an empty directory, want false")
	}
}

func TestFileLoaderPartitions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "msal.cache"), []byte("standard bytes"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "msal.cae.cache"), []byte("cae bytes"), 0600); err != nil {
		t.Fatal(err)
	}
	loader, err := NewFileLoader(dir)
	if err != nil {
		t.Fatalf("NewFileLoader: %s", err)
	}

	tests := []struct {
		desc      string
		partition Partition
		want      string
	}{
		{desc: "standard partition", partition: Standard, want: "standard bytes"},
		{desc: "cae partition", partition: CAE, want: "cae bytes"},
	}
	for _, test := range tests {
		c := &capture{}
		found, err := loader.Load(context.Background(), c, test.partition)
		if err != nil {
			t.Errorf("TestFileLoaderPartitions(%s): got err == %s, want err == nil", test.desc, err)
			continue
		}
		if !found {
			t.Errorf("TestFileLoaderPartitions(%s): got found == false, want true", test.desc)
			continue
		}
		if string(c.got) != test.want {
			t.Errorf("TestFileLoaderPartitions(%s): got %q, want %q", test.desc, c.got, test.want)
		}
	}
}

func TestFileLoaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "msal.cache"), nil, 0600); err != nil {
		t.Fatal(err)
	}
	loader, err := NewFileLoader(dir)
	if err != nil {
		t.Fatalf("NewFileLoader: %s", err)
	}
	found, err := loader.Load(context.Background(), &capture{}, Standard)
	if err != nil {
		t.Fatalf("got err == %s, want err == nil", err)
	}
	if found {
		t.Fatal("got found == true for an empty file, want false")
	}
}

func TestFileLoaderUnmarshalError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "msal.cache"), []byte("not a cache"), 0600); err != nil {
		t.Fatal(err)
	}
	loader, err := NewFileLoader(dir)
	if err != nil {
		t.Fatalf("NewFileLoader: %s", err)
	}
	c := &capture{err: errors.New("bad contract")}
	if _, err := loader.Load(context.Background(), c, Standard); err == nil {
		t.Fatal("got err == nil, want the unmarshal error")
	}
}

func TestFileLoaderCanceledContext(t *testing.T) {
	loader, err := NewFileLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLoader: %s", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx, &capture{}, Standard); err == nil {
		t.Fatal("got err == nil, want context.Canceled")
	}
}
