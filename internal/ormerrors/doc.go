// Package ormerrors defines the error taxonomy shared by the relationship
// loading layer.
//
// Callers compare against the sentinels with errors.Is and extract details
// with errors.As:
//
//	var missing *ormerrors.MissingEagerLoadError
//	if errors.As(err, &missing) {
//		// fall back to a direct query for missing.Name
//	}
package ormerrors
