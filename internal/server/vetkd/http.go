package vetkd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient reaches a vetKD gateway over its JSON API. Byte parameters are
// hex-encoded on the wire.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type publicKeyRequest struct {
	Context string `json:"context"`
}

type publicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type deriveKeyRequest struct {
	Input              string `json:"input"`
	Context            string `json:"context"`
	TransportPublicKey string `json:"transport_public_key"`
}

type deriveKeyResponse struct {
	EncryptedKey string `json:"encrypted_key"`
}

func (c *HTTPClient) PublicKey(ctx context.Context, derivationContext []byte) ([]byte, error) {
	var resp publicKeyResponse
	err := c.post(ctx, "/vetkd/public_key", publicKeyRequest{
		Context: hex.EncodeToString(derivationContext),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("vetkd public key call failed: %w", err)
	}
	return hex.DecodeString(resp.PublicKey)
}

func (c *HTTPClient) DeriveKey(ctx context.Context, input, derivationContext, transportPublicKey []byte) ([]byte, error) {
	var resp deriveKeyResponse
	err := c.post(ctx, "/vetkd/derive_key", deriveKeyRequest{
		Input:              hex.EncodeToString(input),
		Context:            hex.EncodeToString(derivationContext),
		TransportPublicKey: hex.EncodeToString(transportPublicKey),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("vetkd derive key call failed: %w", err)
	}
	return hex.DecodeString(resp.EncryptedKey)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
