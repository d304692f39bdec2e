// Package validate checks and cleans user-supplied reminder text and
// webhook endpoints.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/manav03panchal/watchout/internal/errors"
)

// Input limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxURLLength         = 2048
)

// Title validates a reminder title that has already been sanitized.
func Title(title string) error {
	if title == "" {
		return errors.NewValidationError("title", "title is required",
			"Give the reminder a short title")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.NewValidationError("title",
			fmt.Sprintf("title is longer than %d characters", MaxTitleLength),
			"Move the details into the description")
	}
	return nil
}

// Description validates a reminder description that has already been
// sanitized.
func Description(description string) error {
	if description == "" {
		return errors.NewValidationError("description", "description is required",
			"Describe what the reminder is for")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return errors.NewValidationError("description",
			fmt.Sprintf("description is longer than %d characters", MaxDescriptionLength), "")
	}
	return nil
}

// WebhookURL validates a webhook endpoint. Plain http is only accepted for
// loopback hosts, and literal private addresses are refused. Hostnames are
// not resolved.
func WebhookURL(field, rawURL string) error {
	if rawURL == "" {
		return errors.NewValidationError(field, "url is required", "")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewValidationError(field, "url is too long",
			fmt.Sprintf("URLs must be %d characters or fewer", MaxURLLength))
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewValidationError(field, "invalid url",
			"Provide a valid URL starting with https://")
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewValidationError(field, fmt.Sprintf("unsupported scheme %q", parsed.Scheme),
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewValidationError(field, "url has no host",
			"Provide a valid URL like https://example.com/webhook")
	}

	if isLoopback(hostname) {
		return nil
	}
	if parsed.Scheme == "http" {
		return errors.NewValidationError(field, "http is only allowed for localhost",
			"Use https:// for external services")
	}
	if ip := net.ParseIP(hostname); ip != nil && isInternalIP(ip) {
		return errors.NewValidationError(field, "internal IP addresses are not allowed",
			"Webhook URLs must point to external services")
	}
	return nil
}

func isLoopback(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

var privateRanges = mustParseCIDRs(
	"10.0.0.0/8",     // RFC 1918
	"172.16.0.0/12",  // RFC 1918
	"192.168.0.0/16", // RFC 1918
	"169.254.0.0/16", // link-local, cloud metadata
	"fc00::/7",       // IPv6 private
	"fe80::/10",      // IPv6 link-local
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, len(cidrs))
	for i, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets[i] = network
	}
	return nets
}

func isInternalIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
