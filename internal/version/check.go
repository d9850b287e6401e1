package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/mrtigerst/tdm/pkg/logging"
)

// releaseURL serves the latest published version as a plain text file.
// A var so tests can point it at a local server.
var releaseURL = "https://raw.githubusercontent.com/MrTigerST/tdmcli/main/version"

var checkClient = &http.Client{Timeout: 5 * time.Second}

// Latest fetches the latest published version string.
func Latest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrUpdateCheck, "failed to build update request")
	}

	resp, err := checkClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrUpdateCheck, "failed to reach update server")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrUpdateCheck,
			"update server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrUpdateCheck, "failed to read update response")
	}
	return strings.TrimSpace(string(body)), nil
}

// CheckForUpdates reports the latest version against the running one,
// writing a human-readable summary to w.
func CheckForUpdates(ctx context.Context, w io.Writer) error {
	latest, err := Latest(ctx)
	if err != nil {
		fmt.Fprintln(w, "Failed to check for updates.")
		return err
	}

	fmt.Fprintf(w, "Latest version available: %s\n", latest)
	fmt.Fprintf(w, "Your current version: %s\n", Version)
	if latest != Version {
		fmt.Fprintln(w, "A new version is available! Download it from GitHub.")
	} else {
		fmt.Fprintln(w, "You are using the latest version.")
	}
	return nil
}

// NotifyIfOutdated prints a single upgrade hint when a newer version is
// published. Failures are silent: a command should never get noisier just
// because the network is down. Setting TDM_NO_UPDATE_CHECK disables the
// check entirely.
func NotifyIfOutdated(ctx context.Context, w io.Writer) {
	if os.Getenv("TDM_NO_UPDATE_CHECK") != "" {
		return
	}
	latest, err := Latest(ctx)
	if err != nil {
		logger := logging.GetLogger("version")
		logger.Debug().Err(err).Msg("Update check failed")
		return
	}
	if latest != Version {
		fmt.Fprintln(w, "A new version is available! Download it from GitHub.")
	}
}
