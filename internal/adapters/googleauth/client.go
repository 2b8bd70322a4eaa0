package googleauth

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"wanderwise/internal/adapters/observability"
	"wanderwise/internal/domain"
)

// DefaultBaseURL is Google's OAuth2 tokeninfo host.
const DefaultBaseURL = "https://oauth2.googleapis.com"

var (
	ErrInvalidToken = errors.New("googleauth: invalid token")
	ErrAudience     = errors.New("googleauth: token issued for a different client")
)

// Disabled rejects every token; it stands in when no client id is configured.
var Disabled domain.IdentityVerifier = disabledVerifier{}

type disabledVerifier struct{}

func (disabledVerifier) Verify(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, errors.New("google sign-in is not configured")
}

// Client verifies Google ID tokens against the tokeninfo endpoint and
// implements domain.IdentityVerifier.
type Client struct {
	base     string
	hc       *http.Client
	clientID string
	rl       *rate.Limiter
}

func New(base, clientID string, rps int) (*Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:     base,
		hc:       &http.Client{Timeout: 10 * time.Second},
		clientID: clientID,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (c *Client) Verify(ctx context.Context, token string) (domain.Identity, error) {
	u := fmt.Sprintf("%s/tokeninfo?id_token=%s", c.base, url.QueryEscape(token))

	var ti tokenInfo
	if err := c.get(ctx, u, &ti); err != nil {
		return domain.Identity{}, err
	}
	// tokeninfo validates signature and expiry; audience is on us
	if ti.Aud != c.clientID {
		return domain.Identity{}, ErrAudience
	}
	if ti.Email == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{Email: ti.Email, Name: ti.Name, Picture: ti.Picture}, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After
// when provided. Google answers 400 for anything wrong with the token.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "wanderwise/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("google", "tokeninfo", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			resp.Body.Close()
			return ErrInvalidToken

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
