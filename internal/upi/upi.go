// Package upi builds UPI deep-link payment references. The returned string
// is what the frontend encodes as a QR image; no image rendering happens
// server-side.
package upi

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// PaymentURI returns a upi://pay reference for collecting amount from the
// customer. Amount is formatted with two decimal places and currency is
// always INR.
func PaymentURI(upiID, payee string, amount decimal.Decimal, note string) string {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", payee)
	q.Set("am", amount.StringFixed(2))
	q.Set("cu", "INR")
	q.Set("tn", note)
	return "upi://pay?" + q.Encode()
}
