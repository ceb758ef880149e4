/*
Copyright 2024 The kubedrift authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package kube

import (
	"errors"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ResourceError wraps a cluster operation failure with the identity of
// the affected resource.
type ResourceError struct {
	// Op is the failed operation, e.g. "apply" or "delete".
	Op string

	// Resource is the 'kind[/namespace]/name' identity string.
	Resource string

	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to %s resource %s: %v", e.Op, e.Resource, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ResourceError) Unwrap() error { return e.Err }

// NewResourceError wraps err with the operation and resource identity.
func NewResourceError(op, res string, err error) *ResourceError {
	return &ResourceError{Op: op, Resource: res, Err: err}
}

// IsNotFound reports whether the error indicates an absent resource.
// Besides the API status code, the error text is matched so that
// failures proxied through intermediaries still classify.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsNotFound(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// IsUnauthorized reports whether the error indicates a permission
// failure.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsUnauthorized(err) || apierrors.IsForbidden(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "(unauthorized)")
}

// IsTransport reports whether the error is a connectivity or
// protocol-level failure rather than an API rejection.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var status apierrors.APIStatus
	return !errors.As(err, &status)
}
