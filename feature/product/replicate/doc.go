// Package replicate writes one catalog product into a set of environments.
package replicate
