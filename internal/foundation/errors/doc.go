// Package errors provides the classified error primitives used across vpndesk.
//
// A ClassifiedError carries a category, a severity and a retry strategy next
// to the usual message and cause, so that callers can decide whether to
// swallow, retry, surface or abort without string matching.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryIdentity, "identity registration failed").
//		WithContext("identity", id).
//		Retryable().
//		Build()
package errors
