package inspire

import "net/http"

// ensureSession returns the current HTTP session, creating it if it does
// not exist or was closed.
func (c *Client) ensureSession() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		c.session = c.newSession()
	}
	return c.session
}

func (c *Client) newSession() *http.Client {
	if c.cfg.HTTPClient != nil {
		return c.cfg.HTTPClient
	}
	return &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
		Timeout:   c.cfg.RequestTimeout,
	}
}

// Close releases the HTTP session. It is idempotent, and safe to call on
// a client that never made a request. A later call transparently opens a
// new session. In-flight requests on the old session are not interrupted.
func (c *Client) Close() error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil || session == c.cfg.HTTPClient {
		return nil
	}
	session.CloseIdleConnections()
	return nil
}

// hasSession reports whether a session is currently open.
func (c *Client) hasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}
