//go:build windows

package display

// Windows has no job control; suspend only tells the user so.
func (d *Display) suspend() {
	d.state.Message = "suspend is not supported on this platform"
}

func (d *Display) watchResume() func() {
	return func() {}
}
