package bank

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external bank-transfer processor that executes
// approved withdrawal payouts. The ledger stays the source of truth: a
// failed notification is logged and resent by an admin, never rolled back.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

type PayoutRequest struct {
	Reference         string `json:"reference"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	BankName          string `json:"bank_name"`
	BankAccountName   string `json:"bank_account_name"`
	BankAccountNumber string `json:"bank_account_number"`
}

type PayoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		PayoutID string `json:"payout_id"`
		Status   string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendPayoutOrder submits one payout order for an approved withdrawal.
func (c *Client) SendPayoutOrder(payout PayoutRequest) (*PayoutResponse, error) {
	if payout.Currency == "" {
		payout.Currency = "VND"
	}

	jsonData, err := json.Marshal(payout)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout request: %w", err)
	}

	url := fmt.Sprintf("%s/payouts", c.BaseURL)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response PayoutResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !response.Success {
		return &response, fmt.Errorf("payout rejected by processor: %s", response.Message)
	}

	return &response, nil
}
