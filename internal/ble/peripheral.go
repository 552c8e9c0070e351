package ble

import (
	"fmt"
	"log/slog"
	"sync"

	"tinygo.org/x/bluetooth"
)

// Peripheral is the tinygo-org/bluetooth implementation of Transport. It
// registers the UART-style service on the default adapter and forwards RX
// writes to the configured handler.
type Peripheral struct {
	adapter *bluetooth.Adapter
	name    string
	handler WriteHandler

	mu          sync.Mutex
	adv         *bluetooth.Advertisement
	txChar      bluetooth.Characteristic
	advertising bool
	started     bool
}

// NewPeripheral creates a peripheral advertising under the given local
// name. handler receives every RX write; it must not block for long, since
// the host stack delivers writes serially.
func NewPeripheral(name string, handler WriteHandler) *Peripheral {
	return &Peripheral{
		adapter: bluetooth.DefaultAdapter,
		name:    name,
		handler: handler,
	}
}

// Start enables the adapter and registers the GATT service. It does not
// begin advertising; call StartAdvertising for that.
func (p *Peripheral) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("ble: peripheral already started")
	}

	if err := p.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}

	svcUUID, err := bluetooth.ParseUUID(ServiceUUID)
	if err != nil {
		return fmt.Errorf("ble: parse service UUID: %w", err)
	}
	rxUUID, err := bluetooth.ParseUUID(RXCharUUID)
	if err != nil {
		return fmt.Errorf("ble: parse RX UUID: %w", err)
	}
	txUUID, err := bluetooth.ParseUUID(TXCharUUID)
	if err != nil {
		return fmt.Errorf("ble: parse TX UUID: %w", err)
	}

	var rxChar bluetooth.Characteristic
	err = p.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &rxChar,
				UUID:   rxUUID,
				Flags: bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					slog.Debug("[BLE] rx write", "len", len(value), "offset", offset)
					p.handler(value)
				},
			},
			{
				Handle: &p.txChar,
				UUID:   txUUID,
				Flags: bluetooth.CharacteristicReadPermission |
					bluetooth.CharacteristicNotifyPermission,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ble: add service: %w", err)
	}

	adv := p.adapter.DefaultAdvertisement()
	err = adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.name,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
	})
	if err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	p.adv = adv
	p.started = true

	slog.Info("[BLE] UART service registered", "name", p.name)
	return nil
}

func (p *Peripheral) StartAdvertising() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("ble: peripheral not started")
	}
	if p.advertising {
		slog.Info("[ADV] already advertising")
		return nil
	}
	if err := p.adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}
	p.advertising = true
	slog.Info("[ADV] advertising started", "name", p.name)
	return nil
}

func (p *Peripheral) StopAdvertising() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.advertising {
		return nil
	}
	if err := p.adv.Stop(); err != nil {
		return fmt.Errorf("ble: stop advertising: %w", err)
	}
	p.advertising = false
	slog.Info("[ADV] advertising stopped")
	return nil
}

func (p *Peripheral) Advertising() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advertising
}

func (p *Peripheral) Notify(data []byte) error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return fmt.Errorf("ble: peripheral not started")
	}
	if _, err := p.txChar.Write(data); err != nil {
		return fmt.Errorf("ble: notify: %w", err)
	}
	return nil
}

// Compile-time check that Peripheral implements Transport.
var _ Transport = (*Peripheral)(nil)
