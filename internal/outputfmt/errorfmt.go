package outputfmt

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	absoluteURLInTextRE = regexp.MustCompile(`https?://[^\s"'<>]+`)
	botTokenSegmentRE   = regexp.MustCompile(`/bot[0-9]+:[A-Za-z0-9_-]+`)
)

const redacted = "[redacted]"

// RedactError returns err with credentials removed from any URLs in its text.
// errors.Is and errors.As still see the original chain.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := RedactURLs(err.Error())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactURLs rewrites every absolute URL in raw, masking Bot API token path
// segments, userinfo passwords and sensitive query values. Hosts are kept.
func RedactURLs(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	return absoluteURLInTextRE.ReplaceAllStringFunc(raw, redactURL)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return botTokenSegmentRE.ReplaceAllString(raw, "/bot"+redacted)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
		}
	}
	if path := u.EscapedPath(); botTokenSegmentRE.MatchString(path) {
		u.RawPath = botTokenSegmentRE.ReplaceAllString(path, "/bot"+redacted)
		u.Path = botTokenSegmentRE.ReplaceAllString(u.Path, "/bot"+redacted)
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k := range q {
			if isSensitiveQueryKey(k) {
				q.Set(k, redacted)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}

func isSensitiveQueryKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return false
	}
	n := strings.ReplaceAll(strings.ReplaceAll(k, "-", ""), "_", "")
	if n == "key" {
		return true
	}
	for _, part := range []string{"apikey", "authorization", "token", "secret", "password"} {
		if strings.Contains(n, part) {
			return true
		}
	}
	return false
}
