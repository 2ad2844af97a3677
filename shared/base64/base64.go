package base64

import (
	"encoding/base64"
	"errors"
	"strings"
)

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

var ErrInvalidDataURI = errors.New("invalid base64 data uri")

func GetContentType(file string) string {
	start := len(dataPrefix)
	end := strings.Index(file, base64Marker)

	if end == -1 || end < start {
		return ""
	}

	return file[start:end]
}

// Decode splits a data uri such as "data:image/png;base64,..." into its
// content type and raw bytes.
func Decode(file string) (string, []byte, error) {
	if !strings.HasPrefix(file, dataPrefix) {
		return "", nil, ErrInvalidDataURI
	}

	contentType := GetContentType(file)
	if contentType == "" {
		return "", nil, ErrInvalidDataURI
	}

	payload := file[strings.Index(file, base64Marker)+len(base64Marker):]

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidDataURI, err)
	}

	return contentType, data, nil
}

// Extension returns the file extension for the image types accepted as logos.
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}
