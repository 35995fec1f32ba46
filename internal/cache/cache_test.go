package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, expired read should evict", c.Len())
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)
	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("Get = %v, want last write", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
