package store

import "testing"

func TestNewStoreMemory(t *testing.T) {
	s, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if s == nil {
		t.Fatal("expected non-nil store")
	}
	if err := CloseIfSupported(s); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	if err == nil {
		t.Fatal("expected unsupported store error")
	}
}
