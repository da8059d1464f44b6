package cache

import (
	"testing"
	"time"
)

func TestPutThenGet(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	key := c.Key("list files", []string{"go"})

	if err := c.Put(key, "ls -la"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	command, ok := c.Get(key)
	if !ok || command != "ls -la" {
		t.Fatalf("Get = (%q, %v), want (ls -la, true)", command, ok)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	if _, ok := c.Get(c.Key("never stored", nil)); ok {
		t.Fatal("expected miss")
	}
}

func TestExpiredEntryIsDropped(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Nanosecond)
	key := c.Key("stale", nil)
	if err := c.Put(key, "uptime"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("expired entry must not be returned")
	}
}

func TestKeyDependsOnContextTags(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	if c.Key("list files", []string{"go"}) == c.Key("list files", []string{"nodejs"}) {
		t.Fatal("keys must differ per context")
	}
	// same input normalized by case and surrounding space
	if c.Key("  List Files ", []string{"go"}) != c.Key("list files", []string{"go"}) {
		t.Fatal("keys must normalize input")
	}
}
