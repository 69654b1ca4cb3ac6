package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/config"
	"github.com/mateolafalce/padelpro/internal/entity"
)

const (
	defaultBaseURL = "https://graph.facebook.com"

	// codeNotAllowed is returned when the recipient is missing from the
	// allowed list, which for Argentine mobiles often stores the number without the 9.
	codeNotAllowed = 131030
)

type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiVersion    string
	token         string
	phoneNumberID string
}

func NewClient(cfg *config.WhatsAppConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = "v22.0"
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiVersion:    version,
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type textBody struct {
	Body string `json:"body"`
}

type outgoingMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends a text message, retrying once without the mobile 9 when the
// provider rejects a 549 number as not allowed.
func (c *Client) SendText(ctx context.Context, to, message string) error {
	if c.token == "" || c.phoneNumberID == "" {
		logrus.Error("WhatsApp credentials not configured")
		return entity.NewError(entity.ErrConfigurationMissing, "WhatsApp no está configurado")
	}

	code, err := c.send(ctx, to, message)
	if err == nil {
		return nil
	}

	if code == codeNotAllowed && strings.HasPrefix(to, "549") {
		alternate := "54" + to[3:]
		logrus.WithFields(logrus.Fields{"to": to, "alternate": alternate}).Info("Retrying WhatsApp send without mobile prefix")
		if _, err = c.send(ctx, alternate, message); err == nil {
			return nil
		}
	}

	logrus.WithError(err).WithField("to", to).Error("Failed to send WhatsApp message")
	return fmt.Errorf("%w: %v", entity.ErrUpstreamFailure, err)
}

// send returns the provider error code when the API answered with one.
func (c *Client) send(ctx context.Context, to, message string) (int, error) {
	payload, err := json.Marshal(outgoingMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: message},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return 0, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Code != 0 {
		return apiErr.Error.Code, fmt.Errorf("whatsapp api error %d (status %d): %s", apiErr.Error.Code, resp.StatusCode, apiErr.Error.Message)
	}
	return 0, fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, string(body))
}
