package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// currencyDigits is the number of minor-unit digits Stripe expects.
const currencyDigits = 2

type paymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeGateway struct {
	intents paymentIntents
}

// NewStripeGateway charges through confirmed Stripe PaymentIntents.
func NewStripeGateway(secretKey string) Gateway {
	sc := client.New(secretKey, nil)
	return &stripeGateway{intents: sc.PaymentIntents}
}

func (g *stripeGateway) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	params, err := paymentIntentParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			logrus.WithFields(logrus.Fields{
				"user_id": req.UserID,
				"code":    stripeErr.Code,
				"type":    stripeErr.Type,
			}).Warn("stripe rejected payment intent")
			return nil, fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}
	return &Receipt{ProviderTransactionID: pi.ID}, nil
}

func paymentIntentParams(req ChargeRequest) (*stripe.PaymentIntentParams, error) {
	cents, exact := req.Amount.MinorUnits(currencyDigits)
	if !exact {
		return nil, ErrUnsupportedPrecision
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(cents),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.PaymentMethod),
		Confirm:       stripe.Bool(true),
	}
	params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))
	return params, nil
}
