// Package environment maps environment names (test, staging, prod) to their product
// tables and accounts, and resolves store handles using either the caller's own
// credentials or an assumed cross-account role.
package environment
