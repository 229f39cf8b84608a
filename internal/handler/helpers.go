package handler

import (
	"errors"
	"net/http"
	"strconv"

	"minuta/internal/domain"
	"minuta/internal/domain/models"
	"minuta/internal/editor"
	"minuta/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		var extras map[string]interface{}
		if len(validationErr.MissingFieldIDs) > 0 {
			extras = map[string]interface{}{"missing_fields": validationErr.MissingFieldIDs}
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), extras)
	case errors.Is(err, domain.ErrUnsupportedFormat):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateName), errors.Is(err, editor.ErrBusy):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrExtraction):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrExternalService):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// docTypeParam parses the {type} path segment.
func docTypeParam(w http.ResponseWriter, r *http.Request) (models.DocType, bool) {
	t := models.DocType(r.PathValue("type"))
	if !t.Valid() {
		httputil.RespondError(w, http.StatusNotFound, "unknown document type")
		return "", false
	}
	return t, true
}

// idParam parses the {id} path segment.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid document id")
		return 0, false
	}
	return id, true
}
