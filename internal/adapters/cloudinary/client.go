package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"wanderwise/internal/adapters/observability"
	"wanderwise/internal/domain"
)

// DefaultBaseURL is Cloudinary's upload API host.
const DefaultBaseURL = "https://api.cloudinary.com"

var ErrUnauthorized = errors.New("cloudinary: unauthorized")

// Disabled fails every upload; it stands in when Cloudinary is not configured.
var Disabled domain.ImageStore = disabledStore{}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, string, []byte) (domain.Image, error) {
	return domain.Image{}, errors.New("image storage is not configured")
}

func (disabledStore) Destroy(context.Context, string) error {
	return errors.New("image storage is not configured")
}

// Client uploads package and avatar images to Cloudinary using an unsigned
// upload preset. It implements domain.ImageStore.
//
// Uploads are not retried: a timed-out request may still have landed, and a
// duplicate asset is worse than surfacing the error to the caller.
type Client struct {
	base   string
	hc     *http.Client
	cloud  string
	preset string
	rl     *rate.Limiter
}

func New(base, cloud, preset string, rps int) (*Client, error) {
	if cloud == "" || preset == "" {
		return nil, fmt.Errorf("cloudinary cloud name and upload preset are required")
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:   base,
		hc:     &http.Client{Timeout: 30 * time.Second},
		cloud:  cloud,
		preset: preset,
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type uploadResp struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

func (c *Client) Upload(ctx context.Context, name string, data []byte) (domain.Image, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.Image{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return domain.Image{}, err
	}
	// unique public id keeps re-uploads of a same-named file from colliding
	if err := mw.WriteField("public_id", publicID(name)); err != nil {
		return domain.Image{}, err
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return domain.Image{}, err
	}
	if _, err := fw.Write(data); err != nil {
		return domain.Image{}, err
	}
	if err := mw.Close(); err != nil {
		return domain.Image{}, err
	}

	u := fmt.Sprintf("%s/v1_1/%s/image/upload", c.base, c.cloud)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return domain.Image{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.Image{}, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("cloudinary", "upload", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		var ur uploadResp
		if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
			return domain.Image{}, err
		}
		return domain.Image{PublicID: ur.PublicID, URL: ur.SecureURL}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.Image{}, ErrUnauthorized
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Image{}, fmt.Errorf("upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("upload_preset", c.preset)

	u := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.base, c.cloud)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("cloudinary", "destroy", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		// already gone, treat as success
		return nil
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("destroy status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

// publicID derives a collision-free asset id from the original file name.
func publicID(name string) string {
	base := strings.TrimSuffix(name, ".jpg")
	base = strings.TrimSuffix(base, ".jpeg")
	base = strings.TrimSuffix(base, ".png")
	base = strings.TrimSuffix(base, ".webp")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" {
		base = "asset"
	}
	return base + "-" + uuid.NewString()[:8]
}
