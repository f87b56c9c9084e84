// Package portal drives the grades portal through a Page.
//
// AuthController makes sure the page is logged in, re-submitting the SSO
// login form when the stored session has expired. PeriodScanner then walks
// every reporting period exposed by the period selector and parses each
// period's results tree into grade records.
//
// The browser engine is hidden behind the Page interface so the flows can
// be exercised against an in-memory page in tests.
package portal
