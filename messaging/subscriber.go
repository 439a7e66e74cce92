package messaging

import (
	"github.com/pfeiferj/gomsgq"
	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/utils"
)

type Subscriber[T any] struct {
	Sub gomsgq.MsgqSubscriber
}

// Read returns the next message, or false when nothing usable is queued.
// Undecodable messages are logged and dropped.
func (s *Subscriber[T]) Read() (obj T, success bool) {
	obj, success, err := Decode[T](s.Sub.Read())
	utils.Logwe(errors.Wrap(err, "dropping message"))
	return obj, success
}

func (s *Subscriber[T]) Close() error {
	return closeMsgq(s.Sub.Msgq)
}

func NewSubscriber[T any](name string, conflate bool) (subscriber Subscriber[T], err error) {
	msgq, err := openMsgq(name)
	if err != nil {
		return subscriber, err
	}
	sub := gomsgq.MsgqSubscriber{}
	sub.Conflate = conflate
	sub.Init(msgq)

	subscriber.Sub = sub
	return subscriber, nil
}
