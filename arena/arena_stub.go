//go:build !linux
// +build !linux

package arena

import (
	"errors"

	"github.com/shmring/objectd/api"
)

func newArena() (api.Arena, error) {
	return nil, errors.New("arena: this platform is not supported")
}
