// client.go
//
// A local data service for composing and inspecting identity platform transforms.
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of transform-studio.
// transform-studio is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// transform-studio is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A
// PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with transform-studio.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package platform relays read-only transform requests to the identity
// platform's REST API.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// ErrNoToken is returned when a TokenSource has nothing to offer.
var ErrNoToken = errors.New("platform: no access token")

// TokenSource supplies bearer tokens for platform calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token returns the token, or ErrNoToken when it is empty.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// StatusError is a non-2xx platform response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform: status %d: %s", e.Code, e.Body)
}

// StatusCode returns the HTTP status of the response.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client fetches transforms. It is safe for concurrent use.
type Client struct {
	urlTemplate string
	tokens      TokenSource
	limiter     *rate.Limiter
	timeout     time.Duration
}

// NewClient builds a client. urlTemplate holds one %s for the tenant id.
func NewClient(urlTemplate string, tokens TokenSource, timeout time.Duration, rps float64) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		urlTemplate: urlTemplate,
		tokens:      tokens,
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		timeout:     timeout,
	}
}

// BaseURL is the API root for a tenant. A non-empty override wins.
func (c *Client) BaseURL(tenantID, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	return fmt.Sprintf(c.urlTemplate, tenantID)
}

// FetchTransforms lists every transform visible to the token.
func (c *Client) FetchTransforms(ctx context.Context, baseURL string) ([]*ordered.Map, error) {
	v, err := c.get(ctx, baseURL+"/beta/transforms")
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("platform: transform list is not an array")
	}
	out := make([]*ordered.Map, 0, len(list))
	for _, e := range list {
		if m, ok := e.(*ordered.Map); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// FetchTransform gets a single transform by id.
func (c *Client) FetchTransform(ctx context.Context, baseURL, id string) (*ordered.Map, error) {
	v, err := c.get(ctx, baseURL+"/beta/transforms/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	m, ok := v.(*ordered.Map)
	if !ok {
		return nil, errors.New("platform: transform is not an object")
	}
	return m, nil
}

func (c *Client) get(ctx context.Context, uri string) (any, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	agent := fiber.Get(uri)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(c.timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("platform: request %s: %w", uri, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &StatusError{Code: code, Body: string(body)}
	}

	v, err := ordered.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("platform: decode %s: %w", uri, err)
	}
	return v, nil
}
