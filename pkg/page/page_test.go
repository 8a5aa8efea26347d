package page_test

import (
	"testing"

	"corestore/pkg/config"
	"corestore/pkg/page"
)

func TestNewPageIsInvalidAndClean(t *testing.T) {
	p := page.New()
	if p.ID() != page.InvalidID {
		t.Errorf("ID() = %d, want InvalidID", p.ID())
	}
	if p.IsDirty() {
		t.Error("IsDirty() = true for a fresh page")
	}
	if len(p.Data()) != config.PageSize {
		t.Errorf("len(Data()) = %d, want %d", len(p.Data()), config.PageSize)
	}
}

func TestPinUnpinCounting(t *testing.T) {
	p := page.New()
	if p.PinCount() != 0 {
		t.Fatalf("PinCount() = %d, want 0", p.PinCount())
	}
	if got := p.Pin(); got != 1 {
		t.Errorf("Pin() = %d, want 1", got)
	}
	p.Pin()
	if got := p.Unpin(); got != 1 {
		t.Errorf("Unpin() = %d, want 1", got)
	}
}

func TestResetClearsPayloadAndMetadata(t *testing.T) {
	p := page.New()
	p.Pin()
	p.SetDirty(true)
	p.Data()[0] = 0xFF

	p.Reset(page.ID(7))
	if p.ID() != 7 {
		t.Errorf("ID() = %d, want 7", p.ID())
	}
	if p.PinCount() != 0 {
		t.Errorf("PinCount() = %d, want 0 after Reset", p.PinCount())
	}
	if p.IsDirty() {
		t.Error("IsDirty() = true after Reset")
	}
	if p.Data()[0] != 0 {
		t.Error("Data()[0] != 0 after Reset")
	}
}

func TestLatchIsExclusiveWithReaders(t *testing.T) {
	p := page.New()
	p.RLock()
	p.RLock() // multiple readers are allowed
	p.RUnlock()
	p.RUnlock()

	p.WLock()
	p.WUnlock()
}
