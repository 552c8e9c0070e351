package ble

import (
	"sync"
	"testing"

	"tinygo.org/x/bluetooth"
)

// mockTransport stands in for the peripheral in tests of operator-facing
// code.
type mockTransport struct {
	mu          sync.Mutex
	advertising bool
	notified    [][]byte
}

func (m *mockTransport) StartAdvertising() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advertising = true
	return nil
}

func (m *mockTransport) StopAdvertising() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advertising = false
	return nil
}

func (m *mockTransport) Advertising() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advertising
}

func (m *mockTransport) Notify(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.notified = append(m.notified, cp)
	return nil
}

func TestMockTransportImplementsInterface(t *testing.T) {
	var _ Transport = (*mockTransport)(nil)
}

func TestPeripheralImplementsInterface(t *testing.T) {
	var _ Transport = (*Peripheral)(nil)
}

func TestServiceUUIDsParse(t *testing.T) {
	for _, raw := range []string{ServiceUUID, RXCharUUID, TXCharUUID} {
		if _, err := bluetooth.ParseUUID(raw); err != nil {
			t.Errorf("ParseUUID(%q) error = %v", raw, err)
		}
	}
}

func TestPeripheralRequiresStart(t *testing.T) {
	p := NewPeripheral("test", func([]byte) {})

	if err := p.StartAdvertising(); err == nil {
		t.Error("StartAdvertising() before Start() succeeded, want error")
	}
	if err := p.Notify([]byte("x")); err == nil {
		t.Error("Notify() before Start() succeeded, want error")
	}
	if p.Advertising() {
		t.Error("Advertising() = true before Start()")
	}
}
