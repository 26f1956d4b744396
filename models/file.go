package models

// UploadedFile describes a received upload after it has been stored
type UploadedFile struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	StoragePath string `json:"storage_path"`
}
