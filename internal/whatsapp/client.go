// Package whatsapp provides the outbound messaging gateway client
// (EvolutionAPI-compatible HTTP service).
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

	"elite_crm_backend/platform/apperr"
	"elite_crm_backend/platform/config"
	"elite_crm_backend/platform/logger"
	"elite_crm_backend/platform/phone"
)

// Sender is the outbound gateway interface the pipeline depends on.
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

type Client struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
	log      *logger.Logger
}

type sendTextRequest struct {
	Number      string          `json:"number"`
	Options     sendTextOptions `json:"options"`
	TextMessage textMessage     `json:"textMessage"`
}

type sendTextOptions struct {
	Delay       int    `json:"delay"`
	Presence    string `json:"presence"`
	LinkPreview bool   `json:"linkPreview"`
}

type textMessage struct {
	Text string `json:"text"`
}

// NewClient builds a gateway client. Returns nil when no gateway is
// configured; a nil client silently drops sends.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:   cfg.GetWhatsAppAPIKey(),
		instance: cfg.GetWhatsAppInstance(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// SendMessage delivers a text message through the gateway.
func (c *Client) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}

	number := phone.GatewayNumber(phoneNumber)
	if len(number) < 10 {
		return apperr.InvalidPayload("invalid phone number for gateway send")
	}

	payload := sendTextRequest{
		Number: number,
		Options: sendTextOptions{
			Delay:    1200,
			Presence: "composing",
		},
		TextMessage: textMessage{Text: message},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Unavailable("whatsapp gateway unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return apperr.Unavailable(
			fmt.Sprintf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil)
	}

	c.log.Info("whatsapp message sent", "phone", number, "instance", c.instance)
	return nil
}
