package service

import "errors"

var (
	// ErrInvalidStateTransition is returned when an entity is asked to
	// move from the wrong state (double payment, releasing refunded
	// escrow, validating a cancelled reservation).
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrSubscriptionRequired is returned by the feature gate when the
	// user has no running trial or active subscription.
	ErrSubscriptionRequired = errors.New("active subscription or trial required")

	// ErrAlreadyUsedTrial is returned when a user who already consumed a
	// trial (or holds a paid subscription) starts another one.
	ErrAlreadyUsedTrial = errors.New("trial already used")

	// ErrTripNotBookable is returned when reserving against a trip that
	// is not active or already departed.
	ErrTripNotBookable = errors.New("trip is not bookable")

	// ErrPrematureRelease is returned when escrow release is attempted
	// before the passenger's boarding was validated.
	ErrPrematureRelease = errors.New("escrow release before boarding validation")

	// ErrDuplicateOpenDispute is returned when a reservation already has
	// an open dispute.
	ErrDuplicateOpenDispute = errors.New("reservation already has an open dispute")

	// ErrAlreadyReviewed is returned when a reservation already carries
	// a review.
	ErrAlreadyReviewed = errors.New("reservation already reviewed")

	// ErrPaymentInProgress is returned when another payment attempt for
	// the same reservation is already running.
	ErrPaymentInProgress = errors.New("payment already in progress for reservation")

	// ErrGatewayTimeout is returned when the payment gateway did not
	// answer within the bounded timeout. Never treated as success.
	ErrGatewayTimeout = errors.New("payment gateway timed out")

	// ErrGatewayFailure is returned when the payment gateway declined
	// the charge.
	ErrGatewayFailure = errors.New("payment gateway declined")

	// ErrDriverNotVerified is returned when an unverified driver profile
	// tries to publish a trip.
	ErrDriverNotVerified = errors.New("driver profile not verified")

	// ErrCodeMismatch is returned when boarding validation is attempted
	// with the wrong reservation code.
	ErrCodeMismatch = errors.New("reservation code does not match")

	// ErrNotReservationPassenger is returned when someone other than the
	// reservation's passenger acts on it.
	ErrNotReservationPassenger = errors.New("not the reservation's passenger")

	// ErrNotTripDriver is returned when someone other than the trip's
	// driver acts on it.
	ErrNotTripDriver = errors.New("not the trip's driver")

	// ErrNotDisputeParty is returned when the dispute raiser is neither
	// the passenger nor the driver of the reservation.
	ErrNotDisputeParty = errors.New("not a party to the reservation")

	// ErrAccountSuspended is returned when a suspended account attempts
	// an authenticated operation.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrRoleNotAllowed is returned when a user's role does not permit
	// the operation.
	ErrRoleNotAllowed = errors.New("role not allowed for this operation")

	// ErrPhoneRegistered is returned when registering a phone number
	// that already belongs to an activated account.
	ErrPhoneRegistered = errors.New("phone number already registered")

	// ErrInvalidOTP is returned for a wrong or expired one-time code.
	ErrInvalidOTP = errors.New("invalid or expired code")

	// ErrTooManyAttempts is returned when the OTP attempt budget is
	// spent; a new code must be requested.
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// Validation errors: malformed input, rejected before any side
	// effect.

	// ErrInvalidPhone is returned when the phone number is empty.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidRole is returned when the requested role is not
	// passenger or driver.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidSeatCount is returned when seats < 1.
	ErrInvalidSeatCount = errors.New("seat count must be at least 1")

	// ErrInvalidPrice is returned when price <= 0.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrDepartureNotFuture is returned when the departure time is not
	// in the future.
	ErrDepartureNotFuture = errors.New("departure time must be in the future")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")

	// ErrInvalidProvider is returned when the payment provider is
	// unknown.
	ErrInvalidProvider = errors.New("invalid payment provider")

	// ErrInvalidPaymentDetails is returned when the provider-specific
	// payment details (phone number, card token) are missing.
	ErrInvalidPaymentDetails = errors.New("missing payment details for provider")

	// ErrInvalidOutcome is returned when a dispute resolution outcome is
	// not refund, release, or none.
	ErrInvalidOutcome = errors.New("invalid dispute outcome")

	// ErrInvalidLicense is returned when driver credentials are missing
	// the license number or plate.
	ErrInvalidLicense = errors.New("license number and plate are required")

	// ErrInvalidGroupName is returned when a travel group name is empty.
	ErrInvalidGroupName = errors.New("group name must not be empty")
)
