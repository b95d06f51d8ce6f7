// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package time

import (
	"encoding/json"
	"testing"
	"time"
)

// item mimics a cache entry carrying an unset timestamp, as other writers of
// the shared cache can produce.
type item struct {
	CachedAt  Unix         `json:"cached_at,omitempty"`
	ExpiresIn DurationTime `json:"expires_in,omitempty"`
}

func TestZeroTimesMarshal(t *testing.T) {
	b, err := json.Marshal(item{})
	if err != nil {
		t.Fatalf("got err == %s, want err == nil", err)
	}
	got := item{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("round trip: got err == %s, want err == nil", err)
	}
	if !got.CachedAt.T.IsZero() || !got.ExpiresIn.T.IsZero() {
		t.Errorf("round trip of zero times produced %v and %v, want both zero", got.CachedAt.T, got.ExpiresIn.T)
	}
}

func TestUnixRoundTrip(t *testing.T) {
	want := time.Unix(4600, 0)
	b, err := json.Marshal(Unix{T: want})
	if err != nil {
		t.Fatalf("got err == %s, want err == nil", err)
	}
	if string(b) != `"4600"` {
		t.Fatalf("got %s, want the epoch as a quoted string", b)
	}
	got := Unix{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("got err == %s, want err == nil", err)
	}
	if !got.T.Equal(want) {
		t.Errorf("got %v, want %v", got.T, want)
	}
}
