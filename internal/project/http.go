package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasmr/atelier/internal/media"
	"github.com/lucasmr/atelier/internal/platform/apperr"
	requestutil "github.com/lucasmr/atelier/internal/platform/request"
	"github.com/lucasmr/atelier/internal/platform/respond"
)

// Handler implements the project HTTP endpoints.
//
// It parses requests, delegates to the service, and maps results to the
// standard response envelopes. It contains no catalog or filesystem logic.
type Handler struct {
	projectService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{projectService: service}
}

// Routes returns a [chi.Router] configured with project-specific routes.
//
// # Endpoints
//   - GET    /                 : Full catalog for one locale (?locale=).
//   - GET    /{identifier}     : Single record across all locales.
//   - POST   /                 : Multipart create (payload field + file parts).
//   - PUT    /{identifier}     : Multipart update.
//   - DELETE /{identifier}     : Delete record and its unshared assets.
//   - POST   /reorder          : Rewrite one category's record order.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Post("/reorder", handler.reorder)
	router.Get("/{identifier}", handler.get)
	router.Put("/{identifier}", handler.update)
	router.Delete("/{identifier}", handler.delete)

	return router
}

// list handles GET /api/v1/projects requests.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	listing, err := handler.projectService.List(request.Context(), request.URL.Query().Get("locale"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, listing)
}

// get handles GET /api/v1/projects/{identifier} requests.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	detail, err := handler.projectService.Get(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

// create handles POST /api/v1/projects requests.
//
// The body is multipart/form-data: a JSON "payload" field describing the
// record and its media plan, plus one file part per new upload, named
// "<fileId>__<originalName>".
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	payload, uploads, err := decodeProjectForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.projectService.Create(request.Context(), payload, uploads)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, detail)
}

// update handles PUT /api/v1/projects/{identifier} requests.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	payload, uploads, err := decodeProjectForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.projectService.Update(request.Context(), identifier, payload, uploads)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

// delete handles DELETE /api/v1/projects/{identifier} requests.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	if err := handler.projectService.Delete(request.Context(), identifier); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// reorderRequest is the JSON body of a reorder call.
type reorderRequest struct {
	Category string   `json:"category"`
	Order    []string `json:"order"`
}

// reorder handles POST /api/v1/projects/reorder requests.
func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.projectService.Reorder(request.Context(), input.Category, input.Order); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// Consistency handles GET /api/v1/catalog/consistency requests. It is mounted
// outside Routes because it reports on the catalogs, not on one project.
func (handler *Handler) Consistency(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.projectService.Consistency(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}

// decodeProjectForm extracts the JSON payload and the uploaded file parts
// from a multipart create/update request.
func decodeProjectForm(request *http.Request) (*Payload, media.Uploads, error) {
	var payload Payload
	if err := requestutil.DecodeMultipartPayload(request, &payload); err != nil {
		return nil, nil, err
	}

	uploads, err := media.ParseUploads(request.MultipartForm)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}

	return &payload, uploads, nil
}
