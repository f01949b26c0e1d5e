package queue

import (
	"strings"

	"github.com/google/uuid"
)

// Msg is the unit of queue traffic. Subjects are dot-separated token
// paths, pub.sensor.42 style.
type Msg struct {
	ID      string            `json:"id"`
	Subject string            `json:"subject"`
	Reply   string            `json:"reply,omitempty"`
	Header  map[string]string `json:"header,omitempty"`
	Data    []byte            `json:"data"`
}

func NewMsg(subject string, data []byte) *Msg {
	return &Msg{
		ID:      uuid.NewString(),
		Subject: subject,
		Data:    data,
	}
}

// Token returns the i-th dot-separated token of the subject.
func (m *Msg) Token(i int) (string, bool) {
	tokens := strings.Split(m.Subject, ".")
	if i < 0 || i >= len(tokens) {
		return "", false
	}
	return tokens[i], true
}

func (m *Msg) SetHeader(key, value string) *Msg {
	if m.Header == nil {
		m.Header = map[string]string{}
	}
	m.Header[key] = value
	return m
}
