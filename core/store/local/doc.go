// Package local implements store.Store on pebble so the toolset can run against
// on-disk tables without AWS.
package local
