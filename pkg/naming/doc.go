// Package naming defines how remote components are addressed.
//
// A component is addressed by a structured Descriptor. The Descriptor is
// rendered into a lookup key only at the wire boundary:
//
//	ejb:<application>/<module>/<distinct>/<component>!<contract>[?stateful]
//
// Empty application and distinct segments are kept in place, so
// "ejb:/remote-app//CalculatorBean!Calculator" is a valid key.
//
// Usage:
//
//	d := naming.Descriptor{
//		Module:    "remote-app",
//		Component: "CounterBean",
//		Contract:  "Counter",
//		Kind:      naming.Stateful,
//	}
//	key := d.Key() // ejb:/remote-app//CounterBean!Counter?stateful
package naming
