package draft

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/lucasmr/atelier/internal/platform/request"
	"github.com/lucasmr/atelier/internal/platform/respond"
	"github.com/lucasmr/atelier/internal/platform/validate"
)

// Handler implements the draft autosave HTTP endpoints.
type Handler struct {
	draftService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{draftService: service}
}

// Routes returns a [chi.Router] configured with draft-specific routes.
//
// # Endpoints
//   - PUT    /{key} : Store or overwrite a draft blob.
//   - GET    /{key} : Load a draft blob.
//   - DELETE /{key} : Discard a draft.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Put("/{key}", handler.save)
	router.Get("/{key}", handler.load)
	router.Delete("/{key}", handler.discard)

	return router
}

// save handles PUT /api/v1/drafts/{key} requests. The body is the raw draft
// JSON, stored opaquely.
func (handler *Handler) save(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")

	body, err := io.ReadAll(io.LimitReader(request.Body, maxDraftBytes+1))
	if err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	draft, err := handler.draftService.Save(request.Context(), key, json.RawMessage(body))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, draft)
}

// load handles GET /api/v1/drafts/{key} requests.
func (handler *Handler) load(writer http.ResponseWriter, request *http.Request) {
	draft, err := handler.draftService.Load(request.Context(), requestutil.Param(request, "key"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, draft)
}

// discard handles DELETE /api/v1/drafts/{key} requests.
func (handler *Handler) discard(writer http.ResponseWriter, request *http.Request) {
	if err := handler.draftService.Discard(request.Context(), requestutil.Param(request, "key")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
