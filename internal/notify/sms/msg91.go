package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMSG91BaseURL = "https://control.msg91.com"

// MSG91Provider sends SMS through the MSG91 HTTP API (route 4,
// transactional). It shares the Provider contract with SNS so the two are
// interchangeable by configuration.
type MSG91Provider struct {
	httpClient *http.Client
	baseURL    string
	authKey    string
	senderID   string
}

// NewMSG91Provider validates credentials eagerly; a missing auth key is a
// configuration error, not a per-recipient one.
func NewMSG91Provider(authKey, senderID, baseURL string) (*MSG91Provider, error) {
	if strings.TrimSpace(authKey) == "" {
		return nil, errors.New("sms: msg91 auth key is required")
	}
	if baseURL == "" {
		baseURL = defaultMSG91BaseURL
	}
	return &MSG91Provider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		authKey:    authKey,
		senderID:   senderID,
	}, nil
}

func (p *MSG91Provider) Name() string { return "msg91" }

func (p *MSG91Provider) Send(ctx context.Context, phone, body string) (string, error) {
	q := url.Values{}
	q.Set("authkey", p.authKey)
	q.Set("mobiles", "91"+phone)
	q.Set("message", body)
	q.Set("sender", p.senderID)
	q.Set("route", "4")
	q.Set("country", "91")
	q.Set("response", "json")

	endpoint := p.baseURL + "/api/sendhttp.php?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sms: msg91 status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Legacy plain-text responses carry just the request id.
		return strings.TrimSpace(string(raw)), nil
	}
	if strings.EqualFold(parsed.Type, "error") {
		return "", fmt.Errorf("sms: msg91 rejected send: %s", parsed.Message)
	}
	return parsed.Message, nil
}
