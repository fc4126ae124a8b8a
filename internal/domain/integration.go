package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderRazorpay Provider = "razorpay"
	ProviderPayPal   Provider = "paypal"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderStripe, ProviderRazorpay, ProviderPayPal:
		return true
	}
	return false
}

var (
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrMissingCredentials = errors.New("missing credentials")
)

// IntegrationCredentials is one of StripeCredentials, RazorpayCredentials or
// PayPalCredentials. The provider tag selects the concrete shape.
type IntegrationCredentials interface {
	Provider() Provider
	Validate() error
}

type StripeCredentials struct {
	APIKey string `json:"api_key"`
}

func (StripeCredentials) Provider() Provider { return ProviderStripe }

func (c StripeCredentials) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: stripe api_key is required", ErrMissingCredentials)
	}
	return nil
}

type RazorpayCredentials struct {
	KeyID     string `json:"key_id"`
	KeySecret string `json:"key_secret"`
}

func (RazorpayCredentials) Provider() Provider { return ProviderRazorpay }

func (c RazorpayCredentials) Validate() error {
	if strings.TrimSpace(c.KeyID) == "" || strings.TrimSpace(c.KeySecret) == "" {
		return fmt.Errorf("%w: razorpay api_key and api_secret are required", ErrMissingCredentials)
	}
	return nil
}

type PayPalCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (PayPalCredentials) Provider() Provider { return ProviderPayPal }

func (c PayPalCredentials) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("%w: paypal client_id and client_secret are required", ErrMissingCredentials)
	}
	return nil
}

// DecodeCredentials reads the stored JSON form back into the variant named by provider.
func DecodeCredentials(provider Provider, raw []byte) (IntegrationCredentials, error) {
	var (
		creds IntegrationCredentials
		err   error
	)
	switch provider {
	case ProviderStripe:
		var c StripeCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case ProviderRazorpay:
		var c RazorpayCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	case ProviderPayPal:
		var c PayPalCredentials
		err = json.Unmarshal(raw, &c)
		creds = c
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s credentials: %w", provider, err)
	}
	return creds, nil
}

func EncodeCredentials(c IntegrationCredentials) ([]byte, error) {
	return json.Marshal(c)
}

// IntegrationKey links a company to a payment provider. There is at most one
// per (company, provider); re-linking overwrites it.
type IntegrationKey struct {
	ID          int64
	CompanyID   int64
	Provider    Provider
	Credentials IntegrationCredentials
	AddedBy     int64
	AddedAt     time.Time
}
