package clients

import (
	"encoding/json"
	"errors"
	"net/http"

	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

const maxCreateBody = 64 << 10

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/api/clients", func(cr chi.Router) {
		cr.Get("/", listClientsHandler(svc, log))
		cr.Post("/", createClientHandler(svc, log))
		cr.Get("/stats", clientStatsHandler(svc, log))
	})
}

// createClientRequest es el formulario del modal "Записаться на приём".
type createClientRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	PetName   string `json:"petName"`
	PetType   string `json:"petType"`
	Message   string `json:"message"`
}

type clientStatsResponse struct {
	TotalClients int `json:"totalClients"`
}

// listClientsHandler godoc
// @Summary Listar clientes
// @Description Todas las solicitudes, más recientes primero. Sin paginación.
// @Tags clients
// @Produce json
// @Success 200 {array} Client
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients [get]
func listClientsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context(), log).Error("list clients failed", logger.Fields{"err": err})
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, items)
	}
}

// createClientHandler godoc
// @Summary Crear solicitud de turno
// @Description firstName y lastName son obligatorios; el resto se guarda como null si viene vacío.
// @Tags clients
// @Accept json
// @Produce json
// @Param payload body createClientRequest true "Datos del formulario"
// @Success 201 {object} Client
// @Failure 400 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients [post]
func createClientHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createClientRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBody)).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Email:     req.Email,
			PetName:   req.PetName,
			PetType:   req.PetType,
			Message:   req.Message,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				respond.Error(w, http.StatusBadRequest, "Имя и фамилия обязательны")
				return
			}
			logger.FromContext(r.Context(), log).Error("create client failed", logger.Fields{"err": err})
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		logger.FromContext(r.Context(), log).Info("client created", logger.Fields{"client_id": c.ID})
		respond.JSON(w, http.StatusCreated, c)
	}
}

// clientStatsHandler godoc
// @Summary Total de clientes
// @Tags clients
// @Produce json
// @Success 200 {object} clientStatsResponse
// @Failure 500 {object} respond.ErrorBody
// @Router /api/clients/stats [get]
func clientStatsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.CountAll(r.Context())
		if err != nil {
			logger.FromContext(r.Context(), log).Error("count clients failed", logger.Fields{"err": err})
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, clientStatsResponse{TotalClients: n})
	}
}
