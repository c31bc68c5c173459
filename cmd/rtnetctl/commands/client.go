package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpClient is shared across commands; the daemon's debug endpoints are
// cheap reads, so a single short-timeout client suffices.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// fetchJSON GETs path from the configured server address and decodes the
// response body into out.
func fetchJSON(path string, out any) error {
	url := fmt.Sprintf("http://%s%s", serverAddr, path)

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
