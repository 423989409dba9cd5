package domain

import "time"

// AvatarUpload tells the owner how to upload an avatar image: a multipart
// form POST to URL carrying every entry of Fields, with the file last. The
// store rejects uploads whose Content-Type or size fall outside what was
// signed. Key becomes the profile's AvatarRef once the upload is done.
type AvatarUpload struct {
	Key       string            `json:"key"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	ExpiresAt time.Time         `json:"expires_at"`
}
