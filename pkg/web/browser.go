package web

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser tries to open the default browser with the given URL
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	}
	return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
}
