package config

type UploadConfig struct {
	AllowedExtensions []string
	// MIME по сигнатуре (http.DetectContentType): doc определяется как octet-stream, docx как zip
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

const PaperUploadContext = "paper_file"

var UploadContexts = map[string]UploadConfig{
	PaperUploadContext: {
		AllowedExtensions: []string{".pdf", ".doc", ".docx"},
		AllowedMimeTypes: []string{
			"application/pdf",
			"application/zip",
			"application/octet-stream",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		MaxSizeMB:  50,
		PathPrefix: "papers",
	},
}
