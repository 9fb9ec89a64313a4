package service

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/airlink-io/nodectl/internal/api"
)

// UploadResult is the cloud's answer to a firmware image upload. ImageURL is
// the firmware reference the device later fetches the image from.
type UploadResult struct {
	Status      string `json:"status"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// Succeeded reports whether the cloud accepted the image.
func (r *UploadResult) Succeeded() bool {
	return r != nil && strings.Contains(r.Status, "success")
}

type uploadRequest struct {
	FileName string `json:"file_name"`
	FileData string `json:"file_data"`
}

// UploadFirmware transmits a base64-encoded firmware image for the given
// node in a single request/response pair.
func UploadFirmware(ctx context.Context, c *api.Client, nodeID, imageName, base64Payload string) (*UploadResult, error) {
	query := url.Values{"node_id": []string{nodeID}}

	var result UploadResult
	err := c.PostJSON(ctx, "user/nodes/ota/image", query, uploadRequest{
		FileName: imageName,
		FileData: base64Payload,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ImageStem derives the firmware image name sent to the cloud from a local
// file path: the final path element with one trailing ".bin" suffix removed
// (ASCII case-insensitive). Paths without the suffix keep their full base
// name, so the result is never empty for a non-empty file name.
func ImageStem(path string) string {
	base := filepath.Base(path)
	if len(base) > len(".bin") && strings.EqualFold(base[len(base)-4:], ".bin") {
		return base[:len(base)-4]
	}
	return base
}
