package term

import (
	"errors"
	"os"
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
)

var errUnsupported = errors.New("terminal backend is not supported on windows")

type Config struct {
	Device           string
	Output           *os.File
	KeyHold          time.Duration
	InstructionDelay time.Duration
}

func DefaultConfig() Config {
	return Config{}
}

type Terminal struct{}

func New(Config) (*Terminal, error) {
	return nil, errUnsupported
}

func (*Terminal) Shutdown() {}

func (*Terminal) ReadInput(func(vm.Key), func(vm.Key)) error {
	return errUnsupported
}

func (*Terminal) Draw([]uint8) error {
	return errUnsupported
}

func (*Terminal) WaitForNextFrame() error {
	return errUnsupported
}
