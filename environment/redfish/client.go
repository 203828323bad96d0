package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type PowerState string

const (
	PowerStateOn      PowerState = "On"
	PowerStateOff     PowerState = "Off"
	PowerStateUnknown PowerState = "Unknown"
)

type ResetType string

const (
	ResetPushPowerButton  ResetType = "PushPowerButton"
	ResetGracefulShutdown ResetType = "GracefulShutdown"
	ResetOn               ResetType = "On"
)

type powerStatus struct {
	PowerState PowerState `json:"PowerState"`
}

type Client struct {
	url      *url.URL
	system   string
	username string
	password string
	http     *http.Client
}

// Reset triggers the ComputerSystem.Reset action of the managed system.
func (c *Client) Reset(ctx context.Context, resetType ResetType) error {
	endpoint := c.url.JoinPath("Systems", c.system, "Actions", "ComputerSystem.Reset/")

	jsonData, err := json.Marshal(map[string]ResetType{"ResetType": resetType})
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating the request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending the request: %w", err)
	}
	defer resp.Body.Close()

	// Some BMCs answer 204 or 202 to a reset.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading the response body: %w", err)
		}
		return fmt.Errorf("error resetting the system (StatusCode: %d, Body: %v)", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) PowerState(ctx context.Context) (PowerState, error) {
	endpoint := c.url.JoinPath("Systems", c.system, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return PowerStateUnknown, fmt.Errorf("error creating the request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return PowerStateUnknown, fmt.Errorf("error sending the request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return PowerStateUnknown, fmt.Errorf("error reading the response body: %w", err)
		}
		return PowerStateUnknown, fmt.Errorf("error retrieving system power state (StatusCode: %d, Body: %v)", resp.StatusCode, string(body))
	}

	var status powerStatus
	err = json.NewDecoder(resp.Body).Decode(&status)
	if err != nil {
		return PowerStateUnknown, fmt.Errorf("error decoding the JSON response: %w", err)
	}
	return status.PowerState, nil
}

func NewClient(baseUrl, system, username, password string, insecure bool) (*Client, error) {
	if !strings.Contains(baseUrl, "://") {
		baseUrl = "https://" + baseUrl
	}
	parsedUrl, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("error parsing the URL: %w", err)
	}
	parsedUrl = parsedUrl.JoinPath("/redfish/v1/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure}

	return &Client{
		url:      parsedUrl,
		system:   system,
		username: username,
		password: password,
		http:     &http.Client{Transport: transport, Timeout: 15 * time.Second},
	}, nil
}
