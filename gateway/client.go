package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Metadata rides along the payment session untouched and is returned with
// the status, so confirmation can recover the purchase context without a
// local lookup.
type Metadata map[string]string

type Session struct {
	RedirectURL string
	Reference   string
}

type PaymentStatus struct {
	Status          Status
	Metadata        Metadata
	CollectedAmount decimal.Decimal
}

// Error wraps any provider or transport failure. Callers must assume no
// provider-side state changed when they see one.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// PaymentClient is the hosted-payment provider surface used by the
// purchase/confirmation flows.
type PaymentClient interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, metadata Metadata) (*Session, error)
	GetStatus(ctx context.Context, reference string) (*PaymentStatus, error)
}

type Client struct {
	BaseURL         string
	ConfigurationID string
	SecretKey       string
	Currency        string

	ReturnURLSuccess   string
	ReturnURLFailed    string
	ReturnURLCancelled string

	HTTP *http.Client
}

func NewClientFromEnv() *Client {
	currency := os.Getenv("GATEWAY_CURRENCY")
	if currency == "" {
		currency = "GBP"
	}
	return &Client{
		BaseURL:            strings.TrimRight(os.Getenv("GATEWAY_BASE_URL"), "/"),
		ConfigurationID:    os.Getenv("GATEWAY_CONFIGURATION_ID"),
		SecretKey:          os.Getenv("GATEWAY_SECRET_KEY"),
		Currency:           currency,
		ReturnURLSuccess:   os.Getenv("GATEWAY_RETURN_URL_SUCCESS"),
		ReturnURLFailed:    os.Getenv("GATEWAY_RETURN_URL_FAILED"),
		ReturnURLCancelled: os.Getenv("GATEWAY_RETURN_URL_CANCELLED"),
		HTTP:               &http.Client{Timeout: 15 * time.Second},
	}
}

// sign computes the request hash: uppercase hex SHA-512 of the secret key
// concatenated with the exact body bytes that go on the wire. An empty body
// hashes the secret key alone, which is the scheme for status reads.
func (c *Client) sign(body []byte) string {
	h := sha512.New()
	h.Write([]byte(c.SecretKey))
	h.Write(body)
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

type paymentJobParameters struct {
	ReturnURLSuccess   string `json:"returnUrlSuccess"`
	ReturnURLFailed    string `json:"returnUrlFailed"`
	ReturnURLCancelled string `json:"returnUrlCancelled"`
}

type paymentJobRequest struct {
	AmountToCollect string               `json:"amountToCollect"`
	Currency        string               `json:"currency"`
	Parameters      paymentJobParameters `json:"parameters"`
	Metadata        Metadata             `json:"metadata"`
}

func (c *Client) CreateSession(ctx context.Context, amount decimal.Decimal, metadata Metadata) (*Session, error) {
	payload := paymentJobRequest{
		AmountToCollect: amount.StringFixed(2),
		Currency:        c.Currency,
		Parameters: paymentJobParameters{
			ReturnURLSuccess:   c.ReturnURLSuccess,
			ReturnURLFailed:    c.ReturnURLFailed,
			ReturnURLCancelled: c.ReturnURLCancelled,
		},
		Metadata: metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: "create session", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/payment-jobs", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "create session", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ConfigurationId", c.ConfigurationID)
	req.Header.Set("Hash", c.sign(body))

	respBody, err := c.do(req, "create session")
	if err != nil {
		return nil, err
	}

	var res struct {
		Reference string `json:"reference"`
		Data      struct {
			Reference string `json:"reference"`
		} `json:"data"`
		Actions []struct {
			URL string `json:"url"`
		} `json:"actions"`
		Links struct {
			Action struct {
				URL string `json:"url"`
			} `json:"action"`
		} `json:"links"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, &Error{Op: "create session", Err: err}
	}

	session := &Session{Reference: res.Reference}
	if session.Reference == "" {
		session.Reference = res.Data.Reference
	}
	if len(res.Actions) > 0 && res.Actions[0].URL != "" {
		session.RedirectURL = res.Actions[0].URL
	} else {
		session.RedirectURL = res.Links.Action.URL
	}

	if session.Reference == "" || session.RedirectURL == "" {
		return nil, &Error{Op: "create session", Err: fmt.Errorf("response missing reference or redirect url")}
	}
	return session, nil
}

func (c *Client) GetStatus(ctx context.Context, reference string) (*PaymentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/payment-jobs/"+reference, nil)
	if err != nil {
		return nil, &Error{Op: "get status", Err: err}
	}
	req.Header.Set("ConfigurationId", c.ConfigurationID)
	req.Header.Set("Hash", c.sign(nil))

	respBody, err := c.do(req, "get status")
	if err != nil {
		return nil, err
	}

	var res struct {
		Status          string   `json:"status"`
		Metadata        Metadata `json:"metadata"`
		AmountCollected string   `json:"amountCollected"`
		AmountToCollect string   `json:"amountToCollect"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, &Error{Op: "get status", Err: err}
	}

	collectedRaw := res.AmountCollected
	if collectedRaw == "" {
		collectedRaw = res.AmountToCollect
	}
	collected := decimal.Zero
	if collectedRaw != "" {
		if collected, err = decimal.NewFromString(collectedRaw); err != nil {
			return nil, &Error{Op: "get status", Err: fmt.Errorf("bad collected amount %q", collectedRaw)}
		}
	}

	return &PaymentStatus{
		Status:          normaliseStatus(res.Status),
		Metadata:        res.Metadata,
		CollectedAmount: collected,
	}, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Err: fmt.Errorf("provider returned status %s", resp.Status)}
	}
	return body, nil
}

func normaliseStatus(raw string) Status {
	switch strings.ToLower(raw) {
	case "completed", "complete", "success", "succeeded":
		return StatusCompleted
	case "failed", "declined", "error":
		return StatusFailed
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusPending
	}
}
