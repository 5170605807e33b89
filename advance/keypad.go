package advance

// Key is a button on the console, numbered by its KEYINPUT bit.
type Key uint8

const (
	KeyA Key = iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL
)

// Keys is the set of held buttons, one bit per Key. KEYINPUT reports the
// complement.
type Keys uint16

// Press adds k to the set.
func (ks *Keys) Press(k Key) {
	*ks |= 1 << k
}

// Release removes k from the set.
func (ks *Keys) Release(k Key) {
	*ks &^= 1 << k
}

// Held reports whether k is in the set.
func (ks Keys) Held(k Key) bool {
	return ks&(1<<k) != 0
}

var keyNames = [...]string{"A", "B", "Select", "Start", "Right", "Left", "Up", "Down", "R", "L"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "Unknown"
}
