package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shortener/internal/auth"
	"github.com/vadimbarashkov/url-shortener/internal/service"
	"github.com/vadimbarashkov/url-shortener/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// decodeJSON reads the request body into v and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.JSON(w, r, response.InvalidRequestBodyResponse)
		return false
	}

	if err := validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

// linkID parses the {ref} path parameter as a link id and answers 400 on failure.
func linkID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ref"), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid link id"))
		return 0, false
	}
	return id, true
}

// renderServiceError maps service errors onto HTTP statuses.
// Unexpected errors are attached to the request log entry.
func renderServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.NotFoundResponse)
	case errors.Is(err, service.ErrAlreadyExists):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(service.ErrAlreadyExists.Error()))
	case errors.Is(err, service.ErrGenerationExhausted):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(service.ErrGenerationExhausted.Error()))
	case errors.Is(err, service.ErrValidation):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid original url or short code"))
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

func handleCreateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleCreateLink"

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if !decodeJSON(w, r, validate, &req) {
			return
		}

		ownerID, _ := auth.OwnerFromContext(r.Context())

		link, err := svc.CreateLink(r.Context(), req.OriginalURL, req.PreferredCode, ownerID)
		if err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(toLinkResponse(link)))
	}
}

func handleRedirect(redirects Redirector) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "ref")

		target, err := redirects.Resolve(r.Context(), code)
		if err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

func handleLinkInfo(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleLinkInfo"

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := linkID(w, r)
		if !ok {
			return
		}

		link, err := svc.GetLink(r.Context(), id)
		if err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(toLinkResponse(link)))
	}
}

func handleListLinks(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleListLinks"

	return func(w http.ResponseWriter, r *http.Request) {
		links, err := svc.ListLinks(r.Context(), r.URL.Query().Get("owner_id"))
		if err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(toLinkResponses(links)))
	}
}

func handleProcessText(texts TextProcessor, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleProcessText"

	return func(w http.ResponseWriter, r *http.Request) {
		var req processTextRequest
		if !decodeJSON(w, r, validate, &req) {
			return
		}

		ownerID, _ := auth.OwnerFromContext(r.Context())

		res, err := texts.Process(r.Context(), *req.Text, req.BaseURL, ownerID)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("an error occurred while processing the text"))
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(toProcessedTextResponse(res)))
	}
}

func handleUpdateLink(svc LinkService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateLink"

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := linkID(w, r)
		if !ok {
			return
		}

		var req updateLinkRequest
		if !decodeJSON(w, r, validate, &req) {
			return
		}

		link, err := svc.UpdateLink(r.Context(), id, req.toLinkUpdate())
		if err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(toLinkResponse(link)))
	}
}

func handleDeleteLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeleteLink"

	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := linkID(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteLink(r.Context(), id); err != nil {
			renderServiceError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.Success(deleteLinkResponse{Deleted: true}))
	}
}
