// Package messaging moves JSON encoded values over msgq shared memory
// sockets.
package messaging

import (
	"encoding/json"

	"github.com/pfeiferj/gomsgq"
	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/settings"
)

func Encode[T any](obj T) ([]byte, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode message")
	}
	return b, nil
}

// Decode returns false for empty reads so callers can poll without
// treating a quiet socket as an error.
func Decode[T any](data []byte) (obj T, success bool, err error) {
	if len(data) == 0 {
		return obj, false, nil
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return obj, false, errors.Wrap(err, "could not decode message")
	}
	return obj, true, nil
}

func openMsgq(name string) (gomsgq.Msgq, error) {
	msgq := gomsgq.Msgq{}
	err := msgq.Init(name, settings.GetSegmentSize(name))
	if err != nil {
		return msgq, errors.Wrapf(err, "could not open msgq %s", name)
	}
	return msgq, nil
}

func closeMsgq(msgq gomsgq.Msgq) error {
	err, err2 := msgq.Close()
	if err != nil {
		return errors.Wrap(err, "could not close msgq")
	}
	if err2 != nil {
		return errors.Wrap(err2, "could not close msgq")
	}
	return nil
}
