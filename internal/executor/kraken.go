package executor

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TradePilot/internal/model"
)

// KrakenExecutor places real orders through Kraken's private REST API.
// Kraken acknowledges orders asynchronously, so receipts carry
// OrderSubmitted, not OrderFilled; the ledger stays untouched until a
// fill is confirmed.
type KrakenExecutor struct {
	BaseURL string
	APIKey  string
	Secret  string
	Client  *http.Client

	nonce func() int64
}

// NewKrakenExecutor creates an executor with optional proxy support.
func NewKrakenExecutor(apiKey, secret, proxyURL string) *KrakenExecutor {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &KrakenExecutor{
		BaseURL: "https://api.kraken.com",
		APIKey:  apiKey,
		Secret:  secret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		nonce: func() int64 { return time.Now().UnixNano() },
	}
}

func (e *KrakenExecutor) Name() string { return "kraken" }

// sign builds Kraken's API-Sign header: HMAC-SHA512 of
// path + SHA256(nonce + postdata), keyed with the base64-decoded secret.
func (e *KrakenExecutor) sign(path, nonce, postData string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(e.Secret)
	if err != nil {
		return "", fmt.Errorf("decode api secret: %w", err)
	}
	inner := sha256.Sum256([]byte(nonce + postData))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(inner[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// krakenOrderResponse is the envelope of Kraken's AddOrder endpoint.
type krakenOrderResponse struct {
	Error  []string `json:"error"`
	Result struct {
		TxID  []string `json:"txid"`
		Descr struct {
			Order string `json:"order"`
		} `json:"descr"`
	} `json:"result"`
}

func (e *KrakenExecutor) PlaceOrder(ticker string, side model.Direction, quantity, price float64) (*model.OrderReceipt, error) {
	if side != model.Buy && side != model.Sell {
		return nil, fmt.Errorf("kraken: unsupported side %q", side)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("kraken: quantity must be positive, got %v", quantity)
	}

	const path = "/0/private/AddOrder"
	nonce := strconv.FormatInt(e.nonce(), 10)

	form := url.Values{}
	form.Set("nonce", nonce)
	form.Set("pair", strings.ReplaceAll(ticker, "/", ""))
	form.Set("type", string(side))
	form.Set("ordertype", "market")
	form.Set("volume", strconv.FormatFloat(quantity, 'f', -1, 64))
	postData := form.Encode()

	signature, err := e.sign(path, nonce, postData)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.BaseURL+path, strings.NewReader(postData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", e.APIKey)
	req.Header.Set("API-Sign", signature)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kraken order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kraken read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kraken order: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed krakenOrderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("kraken decode: %w", err)
	}
	if len(parsed.Error) > 0 {
		return &model.OrderReceipt{
			Ticker:   ticker,
			Side:     side,
			Quantity: quantity,
			Price:    price,
			Status:   model.OrderRejected,
			Venue:    e.Name(),
			Time:     time.Now(),
		}, fmt.Errorf("kraken api error: %s", strings.Join(parsed.Error, "; "))
	}
	if len(parsed.Result.TxID) == 0 {
		return nil, fmt.Errorf("kraken: no txid returned")
	}

	return &model.OrderReceipt{
		OrderID:  parsed.Result.TxID[0],
		Ticker:   ticker,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Status:   model.OrderSubmitted,
		Venue:    e.Name(),
		Time:     time.Now(),
	}, nil
}
