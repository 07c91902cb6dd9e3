// Package reconcile checks a catalog product against its copies in other
// environments and repairs the ones that are missing or stale.
//
// Check classifies every secondary environment as IN SYNC, NOT IN SYNC or DOES NOT
// EXIST; priceCheckedDate is never compared. Repair updates the environments that
// hold a copy and creates the product where it is missing, reporting one result per
// environment.
package reconcile
