//go:build !linux
// +build !linux

package reactor

import (
	"errors"

	"github.com/shmring/objectd/api"
)

func newReactor() (api.Reactor, error) {
	return nil, errors.New("reactor: this platform is not supported")
}
