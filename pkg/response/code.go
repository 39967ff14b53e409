package response

// Business status codes
const (
	CodeSuccess = 0
	CodeError   = 1

	// User module errors 100xx
	ErrUserNotFound        = 10001
	ErrTokenInvalid        = 10002
	ErrNoPermission        = 10003
	ErrInsufficientBalance = 10004

	// Subscription module errors 200xx
	ErrSubscriptionNotFound = 20001
	ErrPricingUnavailable   = 20002
	ErrPurchaseInProgress   = 20003

	// Promo offer module errors 300xx
	ErrOfferNotFound       = 30001
	ErrOfferAlreadyClaimed = 30002
	ErrOfferExpired        = 30003

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
