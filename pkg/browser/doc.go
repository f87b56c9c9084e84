// Package browser runs the headless Chrome instance used for one run
// cycle and adapts rod pages to the portal.Page interface.
//
// Each cycle works in a fresh incognito context seeded from the stored
// session snapshot, so nothing leaks between cycles except what the
// snapshot carries.
package browser
