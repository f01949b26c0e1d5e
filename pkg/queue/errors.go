package queue

import "github.com/appwire/framework/pkg/errors"

var newQueueCode = errors.WithPrefix("QUEUE")

var (
	ErrBadSubject = newQueueCode().New("bad subject {{.subject}}: {{.reason}}")
	ErrPublish    = newQueueCode().New("publish to {{.subject}} failed")
	ErrSubscribe  = newQueueCode().New("subscribe to {{.subject}} failed")
	ErrDecode     = newQueueCode().New("could not decode message on {{.subject}}")
	ErrNoToken    = newQueueCode().New("subject {{.subject}} has no token {{.index}}")
	ErrNoHeader   = newQueueCode().New("message has no header {{.key}}")
)
