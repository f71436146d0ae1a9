package models

import "strings"

// Attachment is a client-submitted file accompanying the request. Payload is
// either base64 bytes in Data or a remote URL; it lives only for the request.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`
}

// UploadedFile is the handle returned by the answer provider's file
// side-channel for attachments that cannot be inlined.
type UploadedFile struct {
	RemoteURI   string `json:"remote_uri"`
	MimeType    string `json:"mime_type"`
	DisplayName string `json:"display_name"`
}

// upload-class document types: materialized via the provider file
// side-channel before the model can reference them
var uploadMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// NeedsUpload reports whether the attachment must go through the upload
// side-channel. Images are inlined directly; office documents and PDFs are
// uploaded; everything else is handled as extractable text.
func (a Attachment) NeedsUpload() bool {
	mime := strings.ToLower(strings.TrimSpace(a.MimeType))
	for _, t := range uploadMimeTypes {
		if mime == t {
			return true
		}
	}
	return false
}

// IsImage reports whether the attachment can be inlined as an image part.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.MimeType), "image/")
}
