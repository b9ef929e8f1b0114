package adapter

import "context"

// BillingData is the minimal buyer information the gateway requires
// when requesting a payment key.
type BillingData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// PaymentGateway abstracts the Paymob accept flow: register an order,
// obtain a short-lived payment key for it, and build the hosted
// checkout URL for that key. The gateway assigns the order id, which
// becomes the purchase's primary key.
type PaymentGateway interface {
	Name() string
	CreateOrder(ctx context.Context, amountCents int64, currency string) (orderID int64, err error)
	PaymentKey(ctx context.Context, orderID int64, amountCents int64, currency string, billing BillingData) (token string, err error)
	CheckoutURL(token string) string
}
