// Package payhere speaks the PayHere hosted-checkout protocol: it builds the
// signed checkout redirect and verifies server-to-server notifications.
package payhere

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	SandboxCheckoutURL    = "https://sandbox.payhere.lk/pay/checkout"
	ProductionCheckoutURL = "https://www.payhere.lk/pay/checkout"

	Currency = "LKR"
)

// Notification status codes.
const (
	StatusSuccess     = "2"
	StatusPending     = "0"
	StatusCanceled    = "-1"
	StatusFailed      = "-2"
	StatusChargedBack = "-3"
)

var (
	ErrMerchantMismatch  = errors.New("payhere: merchant id mismatch")
	ErrSignatureMismatch = errors.New("payhere: signature mismatch")
)

type Config struct {
	MerchantID     string
	MerchantSecret string
	Sandbox        bool
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
	Country        string
}

func (c Config) CheckoutBaseURL() string {
	if c.Sandbox {
		return SandboxCheckoutURL
	}
	return ProductionCheckoutURL
}

// Gateway holds the merchant credentials. It is safe for concurrent use.
type Gateway struct {
	cfg Config
}

func New(cfg Config) *Gateway {
	if cfg.Country == "" {
		cfg.Country = "Sri Lanka"
	}
	return &Gateway{cfg: cfg}
}

func (g *Gateway) MerchantID() string { return g.cfg.MerchantID }

// CheckoutHash is the outbound hash:
// UPPER(MD5(merchant_id + order_id + amount(2dp) + currency + secret)).
func (g *Gateway) CheckoutHash(orderID string, amountCents int64, currency string) string {
	return md5Upper(g.cfg.MerchantID + orderID + FormatAmount(amountCents) + currency + g.cfg.MerchantSecret)
}

// NotifySignature is the inbound signature:
// UPPER(MD5(merchant_id + order_id + payhere_amount + payhere_currency + status_code + UPPER(secret))).
// The secret is uppercased here and raw in CheckoutHash; both match the gateway's documented formulas.
func (g *Gateway) NotifySignature(n Notification) string {
	return md5Upper(n.MerchantID + n.OrderID + n.Amount + n.Currency + n.StatusCode + strings.ToUpper(g.cfg.MerchantSecret))
}

// Verify checks merchant id and signature. It never exposes the expected value.
func (g *Gateway) Verify(n Notification) error {
	if subtle.ConstantTimeCompare([]byte(n.MerchantID), []byte(g.cfg.MerchantID)) != 1 {
		return ErrMerchantMismatch
	}
	want := g.NotifySignature(n)
	got := strings.ToUpper(strings.TrimSpace(n.Signature))
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

func (g *Gateway) Valid(n Notification) bool { return g.Verify(n) == nil }

type Checkout struct {
	OrderID     string
	AmountCents int64
	Currency    string
	Items       string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	Custom1     string
	Custom2     string
}

// CheckoutURL renders the redirect target for the hosted checkout page.
func (g *Gateway) CheckoutURL(c Checkout) (string, error) {
	if c.OrderID == "" {
		return "", fmt.Errorf("payhere: order id required")
	}
	if c.AmountCents <= 0 {
		return "", fmt.Errorf("payhere: amount must be positive")
	}
	if c.Currency == "" {
		c.Currency = Currency
	}
	q := url.Values{}
	q.Set("merchant_id", g.cfg.MerchantID)
	q.Set("return_url", g.cfg.ReturnURL)
	q.Set("cancel_url", g.cfg.CancelURL)
	q.Set("notify_url", g.cfg.NotifyURL)
	q.Set("order_id", c.OrderID)
	q.Set("items", c.Items)
	q.Set("amount", FormatAmount(c.AmountCents))
	q.Set("currency", c.Currency)
	q.Set("first_name", c.FirstName)
	q.Set("last_name", c.LastName)
	q.Set("email", c.Email)
	q.Set("phone", c.Phone)
	q.Set("address", c.Address)
	q.Set("city", c.City)
	q.Set("country", g.cfg.Country)
	if c.Custom1 != "" {
		q.Set("custom_1", c.Custom1)
	}
	if c.Custom2 != "" {
		q.Set("custom_2", c.Custom2)
	}
	q.Set("hash", g.CheckoutHash(c.OrderID, c.AmountCents, c.Currency))
	return g.cfg.CheckoutBaseURL() + "?" + q.Encode(), nil
}

// FormatAmount renders minor units with two decimals, e.g. 100000 -> "1000.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
