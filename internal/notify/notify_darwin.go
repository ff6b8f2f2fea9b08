//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// send shows the notification via osascript.
func send(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q",
		sanitize(body), sanitize(title))
	return exec.Command("osascript", "-e", script).Run()
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}
