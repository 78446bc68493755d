package sync

import "errors"

// ErrSubscriptionRequired rejects a sync before any reconciliation when
// the acting team has no active subscription.
var ErrSubscriptionRequired = errors.New("active subscription required")
