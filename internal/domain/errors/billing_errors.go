package errors

import "errors"

var (
	// ErrUnauthenticated indicates the request carried no authenticated user.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrNotOwned indicates the target subscription belongs to a different customer.
	ErrNotOwned = errors.New("subscription does not belong to this user")

	// ErrNoCustomer indicates the user has no associated provider customer.
	ErrNoCustomer = errors.New("no customer record found for user")

	// ErrCustomerConflict indicates an event carried a provider customer id that
	// conflicts with the one already stored for the user. The stored mapping is
	// immutable; this is a data-integrity alarm, never a silent overwrite.
	ErrCustomerConflict = errors.New("conflicting provider customer id for user")

	// ErrNoActiveSubscription indicates the customer has no active subscription.
	ErrNoActiveSubscription = errors.New("no active subscription found")

	// ErrSubscriptionNotFound indicates the specified subscription was not found.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
