package server

import "strings"

// parseHuntPath splits /api/hunts/{id}[/action[/arg]] into its parts. The
// action is the remaining segments joined back together ("photos/3").
func parseHuntPath(path string) (string, string, bool) {
	const prefix = "/api/hunts/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	huntID := parts[0]
	if len(parts) == 1 {
		return huntID, "", true
	}
	if len(parts) > 3 {
		return "", "", false
	}
	return huntID, strings.Join(parts[1:], "/"), true
}

func parseWebsocketPath(path string) (string, bool) {
	const prefix = "/ws/hunts/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func parseBlobPath(path string) (string, bool) {
	const prefix = "/blobs/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return "", false
	}
	return rest, true
}
