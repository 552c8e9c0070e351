// Package ble implements the BLE peripheral transport for bledrop: a
// Nordic UART-style GATT service whose RX characteristic delivers opaque
// write buffers to the protocol core, plus LE advertising control and a
// TX notify characteristic for outbound status.
//
// Pairing and bonding are left to the host stack (BlueZ Just Works); this
// package only registers the service and moves bytes.
package ble

// Nordic UART Service (NUS) style UUIDs.
const (
	ServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	RXCharUUID  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // central writes here
	TXCharUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // peripheral notifies here
)

// WriteHandler receives each inbound GATT write as one opaque byte buffer,
// in the order the transport observed them. A write boundary carries no
// meaning beyond "one buffer"; the handler must not assume any size.
type WriteHandler func(data []byte)

// Transport is the operator-facing surface of the peripheral, abstracted
// for testing.
type Transport interface {
	// StartAdvertising begins LE advertising. Calling it while already
	// advertising is a no-op.
	StartAdvertising() error
	// StopAdvertising stops LE advertising. Calling it while not
	// advertising is a no-op.
	StopAdvertising() error
	// Advertising reports whether the peripheral is currently advertising.
	Advertising() bool
	// Notify sends data to subscribed centrals on the TX characteristic.
	Notify(data []byte) error
}
