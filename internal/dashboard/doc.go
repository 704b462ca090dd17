// Package dashboard is the cephdash terminal UI: a Bubble Tea program that
// wires the mode state machine to the router, the key bindings, the page
// layout, the gauges and workbench widgets and the metric collector.
//
// The shell owns one of each collaborator:
//
//   - a vent.Bus the controller and widgets talk over
//   - a reqres.Service answering get:ready and get:hosts
//   - a layout.Page whose element and body classes decide what View draws
//   - a graphwall.Wall drawn in graph mode
//   - an app.Controller running the mode callbacks
//
// Collection runs on a tick. Each cycle streams host samples and, when a
// monitor host is configured, the cluster status into a metrics.History.
// The first finished cycle opens the ready latch, which releases a pending
// graph mode entry.
package dashboard
