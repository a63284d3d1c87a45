package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-expense-tracker/internal/middleware"
	"go-expense-tracker/internal/service"
	"go-expense-tracker/pkg/apierror"
)

type DocumentHandler struct {
	service   *service.DocumentService
	maxMemory int64
}

func NewDocumentHandler(service *service.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{service: service, maxMemory: maxUploadSize}
}

// Upload accepts multipart with files plus sourceType/sourceId/type fields
// and links every stored document to the source entity.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		writeError(w, apierror.BadRequest("invalid multipart body", ""))
		return
	}

	var files []service.UploadFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				writeError(w, apierror.BadRequest("unreadable file part", header.Filename))
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				writeError(w, apierror.BadRequest("unreadable file part", header.Filename))
				return
			}
			files = append(files, service.UploadFile{
				Name:     header.Filename,
				MimeType: header.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}

	docs, err := h.service.UploadMany(r.Context(), claims.UserID,
		r.FormValue("sourceType"), r.FormValue("sourceId"), r.FormValue("type"), files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, docs)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	q := r.URL.Query()
	docs, err := h.service.ListBySource(r.Context(), claims.UserID, q.Get("sourceType"), q.Get("sourceId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	doc, err := h.service.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, doc)
}

// Download streams local files and redirects to S3 objects.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	handle, err := h.service.Download(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if handle.Redirect {
		http.Redirect(w, r, handle.URL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", handle.Document.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+handle.Document.OriginalName+`"`)
	http.ServeFile(w, r, handle.Path)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	if err := h.service.Remove(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
