package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", []byte("value1"), 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || string(val) != "value1" {
		t.Fatalf("expected value1, got %q, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", []byte("value1"), 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", []byte("value1"), 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("vehicles:list", []byte("v"), 1*time.Second)
	c.Set("vehicles:count", []byte("n"), 1*time.Second)
	c.Set("clients:list", []byte("c"), 1*time.Second)
	c.Invalidate("vehicles:")
	_, ok1 := c.Get("vehicles:list")
	_, ok2 := c.Get("vehicles:count")
	_, ok3 := c.Get("clients:list")
	if ok1 || ok2 {
		t.Fatalf("expected vehicle keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected clients:list to still exist")
	}
}
