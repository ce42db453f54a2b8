// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// DefaultUploadFailure is the reason used when a failed upload has none.
const DefaultUploadFailure = "Upload failed"

// FileDTO is an uploaded file or attachment.
type FileDTO struct {
	ID            string   `json:"id" validate:"required"`
	Filename      *string  `json:"filename"`
	OriginalName  *string  `json:"originalName"`
	MimeType      *string  `json:"mimeType"`
	Size          *int64   `json:"size"`
	URL           *string  `json:"url"`
	Status        *string  `json:"status"`
	Progress      *float64 `json:"progress"`
	ExtractedText *string  `json:"extractedText"`
	Error         *string  `json:"error"`
}

// ToUploadStatus maps the status string into the closed status set.
// A missing status with a URL present is treated as completed.
func ToUploadStatus(d FileDTO) model.FileUploadStatus {
	switch strings.ToLower(nonEmpty(d.Status)) {
	case "processing", "uploading", "extracting":
		return model.UploadProcessing{Progress: d.Progress}
	case "completed", "complete", "ready", "processed", "uploaded":
		return model.UploadCompleted{URL: stringOr(d.URL, ""), ExtractedText: optional(d.ExtractedText)}
	case "failed", "error":
		return model.UploadFailed{Reason: stringOr(d.Error, DefaultUploadFailure)}
	case "pending", "queued":
		return model.UploadPending{}
	case "":
		if optional(d.URL) != nil {
			return model.UploadCompleted{URL: *d.URL, ExtractedText: optional(d.ExtractedText)}
		}
		return model.UploadPending{}
	default:
		return model.UploadPending{}
	}
}

// ToUploadedFile maps an upload response.
func ToUploadedFile(d FileDTO) (model.UploadedFile, error) {
	if err := check("file", d); err != nil {
		return model.UploadedFile{}, err
	}
	return model.UploadedFile{
		ID:       d.ID,
		Filename: stringOr(firstString(d.Filename, d.OriginalName), d.ID),
		MIMEType: stringOr(d.MimeType, "application/octet-stream"),
		Size:     sizeOf(d.Size),
		URL:      optional(d.URL),
		Status:   ToUploadStatus(d),
	}, nil
}

// ToUploadedFiles maps a file list.
func ToUploadedFiles(ds []FileDTO) ([]model.UploadedFile, error) {
	out := make([]model.UploadedFile, 0, len(ds))
	for _, d := range ds {
		f, err := ToUploadedFile(d)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ToAttachment maps a message attachment.
func ToAttachment(d FileDTO) (model.Attachment, error) {
	f, err := ToUploadedFile(d)
	if err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		ID:       f.ID,
		Filename: f.Filename,
		MIMEType: f.MIMEType,
		Size:     f.Size,
		URL:      f.URL,
		Status:   f.Status,
	}, nil
}

func sizeOf(s *int64) int64 {
	if s == nil {
		return 0
	}
	return *s
}
