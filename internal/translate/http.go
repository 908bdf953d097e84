package translate

import (
	"net/http"

	requestutil "github.com/lucasmr/atelier/internal/platform/request"
	"github.com/lucasmr/atelier/internal/platform/respond"
)

// Handler implements the translation HTTP endpoint.
type Handler struct {
	translateService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{translateService: service}
}

// Translate handles POST /api/v1/translate requests.
func (handler *Handler) Translate(writer http.ResponseWriter, request *http.Request) {
	var input Request
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := handler.translateService.Translate(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, response)
}
