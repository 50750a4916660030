package checkout

// User-facing messages for every way the flow can stop. The backend's
// verbatim business message is preferred when it carries one; these are the
// per-operation fallbacks.
const (
	MsgCartEmpty            = "Your cart is empty."
	MsgMissingAddressFields = "Please fill in all shipping address fields."
	MsgCartSyncFailed       = "We could not sync your cart. Please try again."
	MsgAddressInvalid       = "The shipping address looks invalid. Please check it and try again."
	MsgAddressCreateFailed  = "We could not save your shipping address. Please try again."
	MsgOrderCartEmpty       = "Your cart is empty. Add some items before checking out."
	MsgInsufficientStock    = "Some items in your cart are no longer available in the requested quantity."
	MsgAccessDenied         = "Access denied. Please log in again."
	MsgOrderFailed          = "We could not place your order. Please try again."
	MsgPaymentInitFailed    = "We could not start the payment. Your order is saved and remains unpaid."
	MsgPaymentVerifyFailed  = "Payment verification failed. Please contact support."
	MsgPaymentCancelled     = "Payment cancelled, order is pending."
)
