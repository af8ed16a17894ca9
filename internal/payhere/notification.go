package payhere

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Notification is the server-to-server callback sent to notify_url.
type Notification struct {
	MerchantID    string `json:"merchant_id"`
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"payment_id"`
	Amount        string `json:"payhere_amount"`
	Currency      string `json:"payhere_currency"`
	StatusCode    string `json:"status_code"`
	Signature     string `json:"md5sig"`
	StatusMessage string `json:"status_message,omitempty"`
	Method        string `json:"method,omitempty"`
	Custom1       string `json:"custom_1,omitempty"`
	Custom2       string `json:"custom_2,omitempty"`

	// Raw keeps every received field for the audit trail.
	Raw map[string]string `json:"-"`
}

// Missing lists required fields that are empty.
func (n Notification) Missing() []string {
	var out []string
	for _, f := range []struct{ name, v string }{
		{"merchant_id", n.MerchantID},
		{"order_id", n.OrderID},
		{"payhere_amount", n.Amount},
		{"payhere_currency", n.Currency},
		{"status_code", n.StatusCode},
		{"md5sig", n.Signature},
	} {
		if strings.TrimSpace(f.v) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// RawJSON is the audit copy of the callback. The signature is kept, it is not a secret.
func (n Notification) RawJSON() json.RawMessage {
	raw := n.Raw
	if raw == nil {
		raw = map[string]string{
			"merchant_id":      n.MerchantID,
			"order_id":         n.OrderID,
			"payment_id":       n.PaymentID,
			"payhere_amount":   n.Amount,
			"payhere_currency": n.Currency,
			"status_code":      n.StatusCode,
			"md5sig":           n.Signature,
		}
		if n.StatusMessage != "" {
			raw["status_message"] = n.StatusMessage
		}
		if n.Method != "" {
			raw["method"] = n.Method
		}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

// FromForm decodes a form-encoded callback (PayHere's default content type).
func FromForm(v url.Values) Notification {
	raw := make(map[string]string, len(v))
	for k := range v {
		raw[k] = v.Get(k)
	}
	return fromMap(raw)
}

// FromJSON decodes a JSON callback. Non-string scalars are kept in their JSON text form.
func FromJSON(b []byte) (Notification, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return Notification{}, err
	}
	raw := make(map[string]string, len(m))
	for k, v := range m {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			raw[k] = s
			continue
		}
		raw[k] = strings.TrimSpace(string(v))
	}
	return fromMap(raw), nil
}

func fromMap(raw map[string]string) Notification {
	return Notification{
		MerchantID:    strings.TrimSpace(raw["merchant_id"]),
		OrderID:       strings.TrimSpace(raw["order_id"]),
		PaymentID:     strings.TrimSpace(raw["payment_id"]),
		Amount:        strings.TrimSpace(raw["payhere_amount"]),
		Currency:      strings.TrimSpace(raw["payhere_currency"]),
		StatusCode:    strings.TrimSpace(raw["status_code"]),
		Signature:     strings.TrimSpace(raw["md5sig"]),
		StatusMessage: raw["status_message"],
		Method:        raw["method"],
		Custom1:       raw["custom_1"],
		Custom2:       raw["custom_2"],
		Raw:           raw,
	}
}
