package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-expense-tracker/internal/middleware"
	"go-expense-tracker/internal/model"
	"go-expense-tracker/internal/service"
	"go-expense-tracker/pkg/apierror"
)

const maxFilesPerEvent = 10

type ExpenseHandler struct {
	service   *service.ExpenseService
	documents *service.DocumentService
	maxMemory int64
}

func NewExpenseHandler(service *service.ExpenseService, documents *service.DocumentService, maxUploadSize int64) *ExpenseHandler {
	return &ExpenseHandler{service: service, documents: documents, maxMemory: maxUploadSize}
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	q := r.URL.Query()
	events, err := h.service.List(r.Context(), claims.UserID, q.Get("from"), q.Get("to"), q.Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, events)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	event, err := h.service.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, event)
}

// Create accepts plain JSON, or multipart with a JSON "data" field plus
// optional attachments that are linked to the new event.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.CreateEventRequest
	var files []service.UploadFile
	docType := ""

	if isMultipart(r) {
		form, err := h.parseMultipart(r, &payload)
		if err != nil {
			writeError(w, err)
			return
		}
		files = form.files
		docType = form.docType
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, apierror.BadRequest("invalid JSON body", ""))
			return
		}
	}

	event, err := h.service.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(files) > 0 {
		if docType == "" {
			docType = model.DocTypeReceipt
		}
		if _, err := h.documents.UploadMany(r.Context(), claims.UserID, model.SourceExpenseEvent, event.ID, docType, files); err != nil {
			writeError(w, err)
			return
		}
	}

	writeSuccess(w, http.StatusCreated, event)
}

// Update patches the event. With multipart, new attachments are uploaded
// afterwards; replaceFiles=true soft-deletes the existing ones first.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}
	id := chi.URLParam(r, "id")

	var payload model.UpdateEventRequest
	var files []service.UploadFile
	docType := ""
	replaceFiles := false

	if isMultipart(r) {
		form, err := h.parseMultipart(r, &payload)
		if err != nil {
			writeError(w, err)
			return
		}
		files = form.files
		docType = form.docType
		replaceFiles = form.replaceFiles
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, apierror.BadRequest("invalid JSON body", ""))
			return
		}
	}

	event, err := h.service.Update(r.Context(), claims.UserID, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(files) > 0 {
		if replaceFiles {
			old, err := h.documents.ListBySource(r.Context(), claims.UserID, model.SourceExpenseEvent, id)
			if err != nil {
				writeError(w, err)
				return
			}
			for _, doc := range old {
				if err := h.documents.Remove(r.Context(), claims.UserID, doc.ID); err != nil {
					writeError(w, err)
					return
				}
			}
		}

		if docType == "" {
			docType = model.DocTypeReceipt
		}
		if _, err := h.documents.UploadMany(r.Context(), claims.UserID, model.SourceExpenseEvent, id, docType, files); err != nil {
			writeError(w, err)
			return
		}
	}

	writeSuccess(w, http.StatusOK, event)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	q := r.URL.Query()
	summary, err := h.service.Summary(r.Context(), claims.UserID, q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, summary)
}

type eventForm struct {
	files        []service.UploadFile
	docType      string
	replaceFiles bool
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseMultipart decodes the "data" field into dst and collects the uploaded
// files. Each file is buffered in memory; the per-file cap is enforced again
// by the storage layer.
func (h *ExpenseHandler) parseMultipart(r *http.Request, dst any) (eventForm, error) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		return eventForm{}, apierror.BadRequest("invalid multipart body", "")
	}

	raw := r.FormValue("data")
	if raw == "" {
		return eventForm{}, apierror.BadRequest("data field is required", "data")
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return eventForm{}, apierror.BadRequest("data field has invalid JSON", "data")
	}

	form := eventForm{
		docType:      r.FormValue("docType"),
		replaceFiles: r.FormValue("replaceFiles") == "true",
	}

	if r.MultipartForm != nil {
		headers := r.MultipartForm.File["files"]
		if len(headers) > maxFilesPerEvent {
			return eventForm{}, apierror.BadRequest("too many files", "files")
		}
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				return eventForm{}, apierror.BadRequest("unreadable file part", header.Filename)
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return eventForm{}, apierror.BadRequest("unreadable file part", header.Filename)
			}
			form.files = append(form.files, service.UploadFile{
				Name:     header.Filename,
				MimeType: header.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}

	return form, nil
}
