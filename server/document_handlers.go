package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/aibanker/go-aibanker/api"
	"github.com/aibanker/go-aibanker/documents"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
)

// loadDocumentAuthorized fetches the document and enforces ownership the
// same way deals are scoped: admins see everything, others their own.
func (s *Server) loadDocumentAuthorized(r *http.Request) (*documents.Document, error) {
	id, ok := pathID(r)
	if !ok {
		return nil, ierrors.ErrNotFound
	}

	doc, err := s.repos.Documents.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !isAdmin(r) && doc.UploadedBy != userIDFromContext(r.Context()) {
		return nil, ierrors.ErrAccessDenied
	}
	return doc, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset, limit := listParams(r)

	if rawDealID := r.URL.Query().Get("deal_id"); rawDealID != "" {
		dealID, err := strconv.ParseInt(rawDealID, 10, 64)
		if err != nil || dealID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid deal_id")
			return
		}

		// Scoping by deal inherits the deal's ownership rules.
		deal, err := s.repos.Deals.GetByID(r.Context(), dealID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if !isAdmin(r) && deal.CreatedBy != userIDFromContext(r.Context()) {
			s.writeServiceError(w, ierrors.ErrAccessDenied)
			return
		}

		docList, err := s.repos.Documents.ListByDeal(r.Context(), dealID, offset, limit)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, docList)
		return
	}

	var (
		docList []*documents.Document
		err     error
	)
	if isAdmin(r) {
		docList, err = s.repos.Documents.List(r.Context(), offset, limit)
	} else {
		docList, err = s.repos.Documents.ListByUploader(r.Context(), userIDFromContext(r.Context()), offset, limit)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docList)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.GetMaxUploadBytes())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if ierrors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "malformed multipart request")
		return
	}

	dealID, err := strconv.ParseInt(r.FormValue("deal_id"), 10, 64)
	if err != nil || dealID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid deal_id")
		return
	}

	docType := documents.Type(r.FormValue("document_type"))
	if docType == "" {
		docType = documents.TypeOther
	}
	if !documents.ValidType(docType) {
		writeError(w, http.StatusBadRequest, "invalid document type")
		return
	}

	// Uploads go against a deal the caller can see.
	deal, err := s.repos.Deals.GetByID(r.Context(), dealID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !isAdmin(r) && deal.CreatedBy != userIDFromContext(r.Context()) {
		s.writeServiceError(w, ierrors.ErrAccessDenied)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	doc, err := s.storeUpload(r, file, header, deal.ID, docType)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.UploadResponse{
		Document: doc,
		Message:  "document uploaded successfully",
	})
}

// storeUpload writes the file under the upload folder with a generated
// name and records the document. The original name survives as metadata
// only, so a hostile filename never touches the filesystem.
func (s *Server) storeUpload(r *http.Request, file io.Reader, header *multipart.FileHeader, dealID int64, docType documents.Type) (*documents.Document, error) {
	folder := s.config.GetUploadFolder()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, ierrors.Wrapf(err, "[Server.storeUpload] create upload folder")
	}

	filename := uuid.NewString() + filepath.Ext(header.Filename)
	storagePath := filepath.Join(folder, filename)

	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, ierrors.Wrapf(err, "[Server.storeUpload] create file")
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(storagePath)
		return nil, ierrors.Wrapf(err, "[Server.storeUpload] write file")
	}

	doc := &documents.Document{
		DealID:       dealID,
		Filename:     filename,
		OriginalName: header.Filename,
		StoragePath:  storagePath,
		ContentType:  header.Header.Get("Content-Type"),
		SizeBytes:    size,
		DocumentType: docType,
		Status:       documents.StatusUploaded,
		UploadedBy:   userIDFromContext(r.Context()),
	}

	if err := s.repos.Documents.Create(r.Context(), doc); err != nil {
		os.Remove(storagePath)
		return nil, err
	}
	return doc, nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocumentAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocumentAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.repos.Documents.SetStatus(r.Context(), doc.ID, documents.StatusProcessing, ""); err != nil {
		s.writeServiceError(w, err)
		return
	}

	doc, err = s.repos.Documents.GetByID(r.Context(), doc.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocumentAuthorized(r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := s.repos.Documents.Delete(r.Context(), doc.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}

	// The record is authoritative; a leftover file is only wasted disk.
	if doc.StoragePath != "" {
		_ = os.Remove(doc.StoragePath)
	}
	writeJSON(w, http.StatusNoContent, nil)
}
