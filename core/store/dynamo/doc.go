// Package dynamo implements store.Store on Amazon DynamoDB and opens table handles
// for resolved environments, assuming cross-account roles where required.
package dynamo
