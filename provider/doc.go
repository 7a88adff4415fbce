// Package provider defines the text-generation backend contract.
//
// It provides the two-method Provider interface, an error taxonomy with
// errors.Is-based classifiers, a construction-time factory with secret
// resolution for credentials, and a deterministic Static provider for
// tests and cache warm-up dry runs.
package provider
