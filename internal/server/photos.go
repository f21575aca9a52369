package server

import (
	"encoding/base64"
	"errors"
	"strings"
)

// decodePhotoData accepts raw base64 or a data URL and returns the photo
// bytes.
func decodePhotoData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New("no photo data")
	}
	parts := strings.SplitN(data, ",", 2)
	if len(parts) == 2 {
		data = parts[1]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
