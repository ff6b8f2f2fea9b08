//go:build !linux && !darwin

package notify

func send(title, body string) error {
	return nil
}
