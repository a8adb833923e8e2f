package vm

import "fmt"

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k)&0x0F)
}

// Keypad is the live state of the 16-key hex pad, fed by HAL callbacks.
type Keypad struct {
	down    [KeyCount]bool
	latched bool
	last    Key
}

func (k *Keypad) Pressed(key Key) bool {
	return k.down[key&0x0F]
}

// Press marks key as held. A release-to-press transition is latched for key
// waits.
func (k *Keypad) Press(key Key) {
	key &= 0x0F
	if !k.down[key] {
		k.latched = true
		k.last = key
	}
	k.down[key] = true
}

func (k *Keypad) Release(key Key) {
	k.down[key&0x0F] = false
}

// takePress returns the most recent key transition to pressed since the
// latch was last cleared.
func (k *Keypad) takePress() (Key, bool) {
	if !k.latched {
		return 0, false
	}
	k.latched = false
	return k.last, true
}

func (k *Keypad) clearLatch() {
	k.latched = false
}

func (k *Keypad) reset() {
	*k = Keypad{}
}
