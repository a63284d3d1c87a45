package model

import "time"

const (
	StorageLocal = "local"
	StorageS3    = "s3"

	SourceExpenseEvent = "EXPENSE_EVENT"

	DocTypeReceipt = "RECEIPT"
	DocTypeInvoice = "INVOICE"
	DocTypeImage   = "IMAGE"
	DocTypePDF     = "PDF"
	DocTypeOther   = "OTHER"
)

type Document struct {
	ID             string     `json:"id"`
	UserID         string     `json:"-"`
	OriginalName   string     `json:"originalName"`
	MimeType       string     `json:"mimeType"`
	ByteSize       int64      `json:"byteSize"`
	Ext            *string    `json:"ext,omitempty"`
	ChecksumSHA256 string     `json:"checksumSha256"`
	DocType        string     `json:"type"`
	Storage        string     `json:"storage"`
	Bucket         *string    `json:"bucket,omitempty"`
	Key            string     `json:"key"`
	URL            *string    `json:"url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"-"`
}

type DocumentLink struct {
	DocumentID string `json:"documentId"`
	SourceType string `json:"sourceType"`
	SourceID   string `json:"sourceId"`
}

// DownloadHandle tells the handler how to serve a document: a local file to
// stream or a URL to redirect to.
type DownloadHandle struct {
	Redirect bool
	URL      string
	Path     string
	Document Document
}
