package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/services"
	"github.com/dckiller51/trueachievements/internal/services/homeassistant"
)

// CheckCredentials verifies that the TrueAchievements identity is complete.
// It never contacts the site; presence is the strongest check that does
// not risk tripping the export endpoint's rate limiting.
func CheckCredentials(cfg *config.Config) Result {
	const name = "TrueAchievements credentials"

	var missing []string
	if strings.TrimSpace(cfg.Gamer.Gamertag) == "" {
		missing = append(missing, "gamertag")
	}
	if strings.TrimSpace(cfg.Gamer.GamerID) == "" {
		missing = append(missing, "gamer_id")
	}
	if strings.TrimSpace(cfg.Gamer.Token) == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("missing %s", strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: "Configured"}
}

// CheckHomeAssistant verifies Home Assistant connectivity and authentication.
func CheckHomeAssistant(ctx context.Context, baseURL, token string) Result {
	const name = "Home Assistant"

	if strings.TrimSpace(baseURL) == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing token"}
	}

	client, err := homeassistant.New(baseURL, token)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeConnectivityError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeConnectivityError produces a human-readable summary for
// Home Assistant connectivity failures.
func summarizeConnectivityError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (Home Assistant unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (Home Assistant unreachable)"
	}
	if errors.Is(err, services.ErrAuthDenied) {
		return "auth failed (invalid access token)"
	}
	return err.Error()
}
