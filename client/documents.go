package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/documents"
)

// ListDocuments returns the documents visible to the authenticated user.
// dealID filters to one deal when non-zero.
func (c *Client) ListDocuments(ctx context.Context, dealID int64, opts ListOptions) ([]*documents.Document, error) {
	path := "/api/v1/documents" + opts.query()
	if dealID != 0 {
		sep := "?"
		if opts.query() != "" {
			sep = "&"
		}
		path += fmt.Sprintf("%sdeal_id=%d", sep, dealID)
	}

	var docList []*documents.Document
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &docList); err != nil {
		return nil, err
	}
	return docList, nil
}

// GetDocument fetches a single document by id.
func (c *Client) GetDocument(ctx context.Context, id int64) (*documents.Document, error) {
	var doc documents.Document
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadDocument uploads a file against a deal as a multipart form with
// the fields file, deal_id, and document_type. The whole body is buffered
// so the 401 refresh-and-retry cycle can replay it.
func (c *Client) UploadDocument(ctx context.Context, dealID int64, docType documents.Type, filename string, file io.Reader) (*documents.Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UploadDocument] create form file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadDocument] copy file contents")
	}
	if err := writer.WriteField("deal_id", strconv.FormatInt(dealID, 10)); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadDocument] write deal_id field")
	}
	if err := writer.WriteField("document_type", string(docType)); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadDocument] write document_type field")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "[Client.UploadDocument] finalize multipart body")
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/v1/documents/upload", buf.Bytes(), writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var uploadResp api.UploadResponse
	if err := parseResponse(resp, &uploadResp); err != nil {
		return nil, err
	}
	return uploadResp.Document, nil
}

// ProcessDocument queues a document for analysis.
func (c *Client) ProcessDocument(ctx context.Context, id int64) (*documents.Document, error) {
	var doc documents.Document
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/documents/%d/process", id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", id), nil, nil)
}
