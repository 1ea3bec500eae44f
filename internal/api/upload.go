// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/patrimonial/patri-tui/internal/model"
)

// UploadProgress reports bytes sent so far during a document upload.
type UploadProgress struct {
	Sent  int64
	Total int64
}

// Percent returns the upload ratio as 0-100. Unknown totals report 0.
func (p UploadProgress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Sent) / float64(p.Total) * 100
}

// progressReader wraps a reader and reports cumulative bytes read.
// Notifications are rate-limited so a fast local upload does not flood
// the UI; the final read always reports.
type progressReader struct {
	r       io.Reader
	total   int64
	sent    int64
	limiter *rate.Limiter
	onRead  func(UploadProgress)
}

func newProgressReader(r io.Reader, total int64, onRead func(UploadProgress)) *progressReader {
	return &progressReader{
		r:       r,
		total:   total,
		limiter: rate.NewLimiter(rate.Limit(30), 1), // at most 30 updates/sec
		onRead:  onRead,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		done := p.sent >= p.total || err == io.EOF
		if p.onRead != nil && (done || p.limiter.Allow()) {
			p.onRead(UploadProgress{Sent: p.sent, Total: p.total})
		}
	}
	return n, err
}

// UploadDocument uploads a file for a user step, attributed to a
// requirement. onProgress may be nil; when set it receives throttled
// byte-level progress while the body streams out.
//
// The multipart body is produced through a pipe so the whole file never
// sits in memory.
func (c *Client) UploadDocument(ctx context.Context, userStepID int64, requirementID, filename string, file io.Reader, size int64, onProgress func(UploadProgress)) (*model.Document, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to create form file: %w", err))
			return
		}
		src := file
		if onProgress != nil {
			src = newProgressReader(file, size, onProgress)
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to copy file: %w", err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	query := url.Values{}
	query.Set("requirement_id", requirementID)

	var out model.Document
	err := c.do(ctx, requestOpts{
		method:      "POST",
		path:        fmt.Sprintf("/documents/user-steps/%d/documents", userStepID),
		query:       query,
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
