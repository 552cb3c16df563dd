package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/model"
)

const multipartMemory = 1 << 20

// ListTemplates godoc
// @Summary List templates
// @Description List the caller's templates, newest first
// @Tags Templates
// @Produce json
// @Success 200 {array} model.Template
// @Failure 401 {object} errorResponse "Unauthorized"
// @Security BearerAuth
// @Router /email/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tpls, err := h.templates.List(r.Context(), uid)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tpls)
}

// CreateTemplate godoc
// @Summary Create a template
// @Description Save a new template; missing styles fall back to defaults
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body model.TemplateRequest true "Template"
// @Success 201 {object} model.Template
// @Failure 400 {object} errorResponse "Validation failed"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Security BearerAuth
// @Router /email/template [post]
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req model.TemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	tpl, err := h.templates.Create(r.Context(), uid, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, tpl)
}

// GetTemplate godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} model.Template
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Template not found"
// @Security BearerAuth
// @Router /email/template/{id} [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tpl, err := h.templates.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tpl)
}

// UpdateTemplate godoc
// @Summary Update a template
// @Description Replace name and config of an owned template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body model.TemplateRequest true "Template"
// @Success 200 {object} model.Template
// @Failure 400 {object} errorResponse "Validation failed"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Template not found"
// @Security BearerAuth
// @Router /email/template/{id} [put]
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req model.TemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	tpl, err := h.templates.Update(r.Context(), uid, r.PathValue("id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Template not found"
// @Security BearerAuth
// @Router /email/template/{id} [delete]
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.templates.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Template deleted successfully"})
}

// RenderTemplate godoc
// @Summary Download rendered HTML
// @Description Render an owned template into a standalone HTML attachment
// @Tags Templates
// @Produce html
// @Param id path string true "Template ID"
// @Success 200 {string} string "HTML document"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Template not found"
// @Security BearerAuth
// @Router /email/template/{id}/render [get]
func (h *Handler) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	html, filename, err := h.templates.Render(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// GetLayout godoc
// @Summary Get layout skeleton
// @Description Return the raw HTML layout used for rendering
// @Tags Templates
// @Produce json
// @Param name query string false "Layout name" default(default)
// @Success 200 {object} model.LayoutResponse
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Layout not found"
// @Security BearerAuth
// @Router /email/layout [get]
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.templates.Layout(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, model.LayoutResponse{Layout: layout})
}

// UploadImage godoc
// @Summary Upload an image
// @Description Resize to at most 800px wide, re-encode as JPEG and store it
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} model.ImageUploadResponse
// @Failure 400 {object} errorResponse "No file or file too large"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 500 {object} errorResponse "Image could not be processed"
// @Security BearerAuth
// @Router /email/upload-image [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, apperr.New(apperr.ErrBadRequest, "File too large"))
			return
		}
		_, err = h.images.Upload(r.Context(), uid, nil)
		h.respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		_, err = h.images.Upload(r.Context(), uid, nil)
		h.respondError(w, r, err)
		return
	}
	defer file.Close()

	url, err := h.images.Upload(r.Context(), uid, file)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, model.ImageUploadResponse{URL: url, ImageURL: url})
}
