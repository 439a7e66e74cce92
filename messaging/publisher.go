package messaging

import (
	"github.com/pfeiferj/gomsgq"
)

type Publisher[T any] struct {
	Pub  gomsgq.MsgqPublisher
	msgq gomsgq.Msgq
}

func (p *Publisher[T]) Send(obj T) error {
	b, err := Encode(obj)
	if err != nil {
		return err
	}
	p.Pub.Send(b)
	return nil
}

func (p *Publisher[T]) Close() error {
	return closeMsgq(p.msgq)
}

func NewPublisher[T any](name string) (publisher Publisher[T], err error) {
	msgq, err := openMsgq(name)
	if err != nil {
		return publisher, err
	}
	pub := gomsgq.MsgqPublisher{}
	pub.Init(msgq)

	publisher.Pub = pub
	publisher.msgq = msgq
	return publisher, nil
}
