package queue

import "strings"

// placeholder holds one {name} found in a subscription subject, by token
// position.
type placeholder struct {
	name  string
	index int
}

// parseSubject rewrites a subject with {name} placeholders into a broker
// pattern and records which token each placeholder binds. A placeholder
// must span a whole token: pub.{id}.state is valid, pub.sensor-{id} is not.
func parseSubject(subject string) (string, []placeholder, error) {
	if subject == "" {
		return "", nil, ErrBadSubject.
			WithDetail("subject", subject).
			WithDetail("reason", "empty")
	}

	tokens := strings.Split(subject, ".")
	out := make([]string, len(tokens))
	var holders []placeholder
	for i, tok := range tokens {
		switch {
		case tok == "":
			return "", nil, ErrBadSubject.
				WithDetail("subject", subject).
				WithDetail("reason", "empty token")
		case strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") && len(tok) > 2:
			name := tok[1 : len(tok)-1]
			if strings.ContainsAny(name, "{}") {
				return "", nil, ErrBadSubject.
					WithDetail("subject", subject).
					WithDetail("reason", "malformed placeholder")
			}
			holders = append(holders, placeholder{name: name, index: i})
			out[i] = "*"
		case strings.ContainsAny(tok, "{}"):
			return "", nil, ErrBadSubject.
				WithDetail("subject", subject).
				WithDetail("reason", "placeholder must span a whole token")
		case tok == ">" && i != len(tokens)-1:
			return "", nil, ErrBadSubject.
				WithDetail("subject", subject).
				WithDetail("reason", "> is only valid as the last token")
		default:
			out[i] = tok
		}
	}
	return strings.Join(out, "."), holders, nil
}

// MatchSubject reports whether a concrete subject matches a pattern.
// A * token matches exactly one token, a trailing > matches one or more.
func MatchSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(st) == len(pt)
}
