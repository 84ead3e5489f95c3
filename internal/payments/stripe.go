// Package payments wraps the payment collaborator invoked after a
// reservation is created in pending state. Success or failure of the
// payment itself is handled out of band.
package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
)

// CheckoutProvider creates a hosted checkout for a pending reservation.
type CheckoutProvider interface {
	CreateCheckoutSession(amountCents int64, currency, description, reservationID string) (url string, sessionID string, err error)
}

type StripeService struct {
	successURL string
	cancelURL  string
}

// NewStripeService configures the global stripe client and returns the
// checkout provider.
func NewStripeService(secretKey, successURL, cancelURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (s *StripeService) CreateCheckoutSession(amountCents int64, currency, description, reservationID string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(reservationID),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, sess.ID, nil
}
