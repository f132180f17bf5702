// Utilities for importing a browser session from a "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURLRe    = regexp.MustCompile(`(?:^|\s)'?(https?://[^\s']+)'?`)
)

// CurlSession holds the target URL and cookie string parsed from a cURL command.
type CurlSession struct {
	URL     *url.URL
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts the session.
func ParseCurlFile(filepath string) (*CurlSession, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts its URL, headers and cookies.
func ParseCurlCommand(data []byte) (*CurlSession, error) {
	cmd := string(data)
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	session := &CurlSession{Headers: make(map[string]string)}

	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		line := firstNonEmpty(match[1], match[2])
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if session.Cookie == "" {
				session.Cookie = value
			}
			continue
		}
		session.Headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(cmd); len(m) > 2 {
		session.Cookie = firstNonEmpty(m[1], m[2])
	}

	if m := curlURLRe.FindStringSubmatch(cmd); len(m) > 1 {
		u, err := url.Parse(m[1])
		if err == nil {
			session.URL = u
		}
	}

	if session.Cookie == "" {
		return nil, fmt.Errorf("%w: no cookies found in curl command", ErrInvalidInput)
	}

	return session, nil
}

// Cookies splits the cookie string into individual [http.Cookie] values.
func (c *CurlSession) Cookies() []*http.Cookie {
	header := http.Header{}
	header.Add("Cookie", c.Cookie)
	req := http.Request{Header: header}
	return req.Cookies()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
