// Package remote recognizes remote repository sources and builds credentialed clone URLs.
// Every URL that may carry credentials must pass through Redact before it is logged or shown.
package remote

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// remoteSchemes are the URL schemes treated as remote sources.
var remoteSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ssh":   {},
	"git":   {},
	"file":  {},
}

// scpLike matches the scp-like SSH form user@host:path[.git].
var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^/\\].*$`)

// ErrCredentialsUnsupported is returned when credentials are given for a source that cannot carry them.
var ErrCredentialsUnsupported = errors.New("credentials can only be embedded into http(s) URLs")

// ErrIncompleteCredentials is returned when a username is given without a password or vice versa.
var ErrIncompleteCredentials = errors.New("username and password must be given together")

// IsRemote reports whether source denotes a remote repository rather than a local path.
func IsRemote(source string) bool {
	source = strings.TrimSpace(source)
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		if _, ok := remoteSchemes[strings.ToLower(u.Scheme)]; ok {
			return u.Host != "" || strings.EqualFold(u.Scheme, "file")
		}
	}
	return scpLike.MatchString(source)
}

// AuthenticatedURL embeds credentials into the authority component of an http(s) source.
// A token becomes the userinfo ("https://TOKEN@host/..."); a username/password pair becomes
// "user:password@". Sources are returned untouched when creds is empty.
func AuthenticatedURL(source string, creds schema.Credentials) (string, error) {
	if creds.Empty() {
		return source, nil
	}
	if creds.Token == "" && (creds.Username == "" || creds.Password == "") {
		return "", ErrIncompleteCredentials
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid remote URL %q: %w", Redact(source), err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrCredentialsUnsupported
	}
	if creds.Token != "" {
		u.User = url.User(creds.Token)
	} else {
		u.User = url.UserPassword(creds.Username, creds.Password)
	}
	return u.String(), nil
}

// Redact strips the userinfo from a URL. Input that does not parse as a URL with a scheme,
// such as an scp-like "git@host:path", is returned as-is.
func Redact(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.User == nil {
		return source
	}
	u.User = nil
	return u.String()
}

// Scrub replaces every occurrence of the given secrets in msg, including their escaped forms.
func Scrub(msg string, secrets ...string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, "***")
		if esc := url.QueryEscape(s); esc != s {
			msg = strings.ReplaceAll(msg, esc, "***")
		}
		if esc := url.PathEscape(s); esc != s {
			msg = strings.ReplaceAll(msg, esc, "***")
		}
	}
	return msg
}

// Secrets returns the credential values that must never appear in output.
func Secrets(creds schema.Credentials) []string {
	return []string{creds.Token, creds.Password}
}
