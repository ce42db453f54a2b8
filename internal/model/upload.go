// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// FileUploadStatus is the server-side processing state of an uploaded file.
// It is a closed sum type: UploadPending, UploadProcessing, UploadCompleted
// or UploadFailed.
type FileUploadStatus interface {
	isFileUploadStatus()
	// Terminal reports whether no further state change is expected.
	Terminal() bool
}

// UploadPending means the file was received but processing has not started.
type UploadPending struct{}

// UploadProcessing means text extraction or analysis is running.
type UploadProcessing struct {
	Progress *float64
}

// UploadCompleted means the file is ready to attach to messages.
type UploadCompleted struct {
	URL           string
	ExtractedText *string
}

// UploadFailed means processing failed permanently.
type UploadFailed struct {
	Reason string
}

func (UploadPending) isFileUploadStatus()    {}
func (UploadProcessing) isFileUploadStatus() {}
func (UploadCompleted) isFileUploadStatus()  {}
func (UploadFailed) isFileUploadStatus()     {}

func (UploadPending) Terminal() bool    { return false }
func (UploadProcessing) Terminal() bool { return false }
func (UploadCompleted) Terminal() bool  { return true }
func (UploadFailed) Terminal() bool     { return true }

// UploadedFile is the result of a file upload.
type UploadedFile struct {
	ID       string
	Filename string
	MIMEType string
	Size     int64
	URL      *string
	Status   FileUploadStatus
}

// FileData is a local file about to be uploaded.
type FileData struct {
	Filename string
	MIMEType string
	Data     []byte
}
