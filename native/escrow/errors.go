package escrow

import "errors"

var (
	// ErrInsufficientPayment indicates the attached value does not equal
	// the declared total price of the batch. Both under- and over-payment
	// are rejected: the deposit must exactly collateralise the orders.
	ErrInsufficientPayment = errors.New("escrow: attached value must equal total price")
	// ErrDuplicateOrder indicates an identifier collision, either with a
	// stored order or within the submitted batch itself.
	ErrDuplicateOrder = errors.New("escrow: order id already exists")
	// ErrUnknownOrder indicates a lookup miss.
	ErrUnknownOrder = errors.New("escrow: order not found")
	// ErrAlreadyDelivered indicates a re-confirmation attempt.
	ErrAlreadyDelivered = errors.New("escrow: delivery already confirmed")
	// ErrAlreadyDisputed indicates a second dispute attempt on an order
	// that is already under arbitration.
	ErrAlreadyDisputed = errors.New("escrow: dispute already open")
	// ErrInsufficientFee indicates a dispute fee below the configured
	// minimum.
	ErrInsufficientFee = errors.New("escrow: dispute fee below minimum")
)
