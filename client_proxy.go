// Copyright (c) 2025 the govclient authors
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package govclient

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// SetProxyAddress sets an HTTP or SOCKS5 proxy to use for all requests to the
// backend. Must be called before the first request.
func (cli *Client) SetProxyAddress(addr string) error {
	if addr == "" {
		cli.http.Transport = nil
		return nil
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "http", "https":
		cli.SetProxy(http.ProxyURL(parsed))
	case "socks5", "socks5h":
		px, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return err
		}
		cli.SetSOCKSProxy(px)
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, parsed.Scheme)
	}
	return nil
}

// SetProxy sets a proxy function for the underlying HTTP transport.
func (cli *Client) SetProxy(px func(*http.Request) (*url.URL, error)) {
	cli.http.Transport = &http.Transport{Proxy: px}
}

// SetSOCKSProxy routes all backend requests through the given SOCKS5 dialer.
func (cli *Client) SetSOCKSProxy(px proxy.Dialer) {
	transport := &http.Transport{}
	if contextDialer, ok := px.(proxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
	} else {
		transport.Dial = px.Dial
	}
	cli.http.Transport = transport
}
