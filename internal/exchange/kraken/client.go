package kraken

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rcr1994/dcabot/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBaseURL is Kraken's public REST host.
const DefaultBaseURL = "https://api.kraken.com"

const (
	tickerPath   = "/0/public/Ticker"
	balancePath  = "/0/private/Balance"
	addOrderPath = "/0/private/AddOrder"
)

// volumePrecision is the number of fractional digits Kraken expects in
// order volumes.
const volumePrecision = 8

// Client is a Kraken REST API client. It is owned by a single run and is
// not safe for concurrent use: the nonce counter relies on sequential
// private calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	signer     *Signer
	logger     *zap.Logger

	// lastNonce guarantees a strictly increasing nonce even when two
	// private calls land in the same millisecond.
	lastNonce int64
}

// NewClient creates a Kraken client. baseURL is normally DefaultBaseURL;
// tests point it at a local server.
func NewClient(baseURL, apiKey, privateKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("kraken api key is empty")
	}
	signer, err := NewSigner(privateKey)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey: apiKey,
		signer: signer,
		logger: logger,
	}, nil
}

// envelope is Kraken's uniform response wrapper. A non-empty Error slice
// means failure regardless of HTTP status.
type envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// GetPrice fetches the last-trade price for pair from the public ticker.
func (c *Client) GetPrice(ctx context.Context, pair domain.Pair) (domain.PriceQuote, error) {
	reqURL := c.baseURL + tickerPath + "?pair=" + url.QueryEscape(pair.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.PriceQuote{}, errors.Wrap(err, "build ticker request")
	}

	env, err := c.do(req)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if len(env.Error) > 0 {
		return domain.PriceQuote{}, &ExchangeError{Errors: env.Error}
	}

	// Kraken may answer under an aliased pair name, so the result key is
	// not compared against the requested pair; the single entry is taken
	// as-is.
	var tickers map[string]struct {
		Close []string `json:"c"`
	}
	if err := json.Unmarshal(env.Result, &tickers); err != nil {
		return domain.PriceQuote{}, errors.Wrap(err, "parse ticker result")
	}

	for _, ticker := range tickers {
		if len(ticker.Close) == 0 {
			break
		}
		price, err := decimal.NewFromString(ticker.Close[0])
		if err != nil {
			return domain.PriceQuote{}, errors.Wrapf(err, "parse last trade price %q", ticker.Close[0])
		}
		if !price.IsPositive() {
			return domain.PriceQuote{}, errors.Errorf("non-positive price %s for %s", price, pair)
		}
		return domain.PriceQuote{Pair: pair, Price: price}, nil
	}

	return domain.PriceQuote{}, errors.Errorf("no ticker data for %s", pair)
}

// GetBalance queries the account balance and returns the available amount
// of the given asset, in Kraken's asset notation (e.g. "ZEUR"). An asset
// absent from the balance map is reported as zero.
func (c *Client) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	env, err := c.private(ctx, balancePath, url.Values{})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(env.Error) > 0 {
		return decimal.Decimal{}, &ExchangeError{Errors: env.Error}
	}

	var balances map[string]string
	if err := json.Unmarshal(env.Result, &balances); err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse balance result")
	}

	raw, ok := balances[asset]
	if !ok {
		return decimal.Zero, nil
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse balance %q for %s", raw, asset)
	}
	return balance, nil
}

// PlaceMarketBuy submits a market buy order for volume units of the base
// currency. An order the exchange rejects is a normal outcome: the result
// carries Success=false and the exchange's reason, with a nil error.
// A non-nil error means the call itself failed (transport, parse).
func (c *Client) PlaceMarketBuy(ctx context.Context, pair domain.Pair, volume decimal.Decimal) (domain.OrderResult, error) {
	form := url.Values{}
	form.Set("ordertype", "market")
	form.Set("type", "buy")
	form.Set("volume", volume.StringFixed(volumePrecision))
	form.Set("pair", pair.String())

	env, err := c.private(ctx, addOrderPath, form)
	if err != nil {
		return domain.OrderResult{}, err
	}
	if len(env.Error) > 0 {
		return domain.OrderResult{
			Success:     false,
			ErrorDetail: strings.Join(env.Error, "; "),
		}, nil
	}

	var result struct {
		TxID []string `json:"txid"`
	}
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return domain.OrderResult{}, errors.Wrap(err, "parse add order result")
	}

	res := domain.OrderResult{Success: true}
	if len(result.TxID) > 0 {
		res.TransactionID = result.TxID[0]
	}
	return res, nil
}

// private issues an authenticated POST. The nonce is written into the
// form, the body is encoded once, and the same encoding is both signed
// and transmitted.
func (c *Client) private(ctx context.Context, path string, form url.Values) (*envelope, error) {
	nonce := c.nextNonce()
	form.Set("nonce", strconv.FormatInt(nonce, 10))
	body := form.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", path)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("API-Sign", c.signer.Sign(path, nonce, body))

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s failed", req.URL.Path)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read response from %s", req.URL.Path)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.Wrapf(err, "unexpected response from %s: status %d", req.URL.Path, resp.StatusCode)
	}

	if len(env.Error) > 0 {
		c.logger.Warn("kraken api returned errors",
			zap.String("path", req.URL.Path),
			zap.Strings("errors", env.Error))
	}

	return &env, nil
}

// nextNonce returns a fresh millisecond nonce, strictly larger than any
// previous one in this process.
func (c *Client) nextNonce() int64 {
	nonce := time.Now().UnixMilli()
	if nonce <= c.lastNonce {
		nonce = c.lastNonce + 1
	}
	c.lastNonce = nonce
	return nonce
}
