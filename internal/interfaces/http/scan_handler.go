package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/InvenScan-api/internal/application/dto"
	"github.com/jhoicas/InvenScan-api/internal/application/scan"
	"github.com/jhoicas/InvenScan-api/internal/scanner"
)

// ScanHandler maneja las sesiones de escaneo y su historial (protegido).
// Cada decode pasa por el filtro de la sesión; solo los aceptados tocan
// el stock, y el filtro vuelve a armarse pase lo que pase.
type ScanHandler struct {
	sessions *SessionRegistry
	uc       *scan.UseCase
}

// NewScanHandler construye el handler.
func NewScanHandler(sessions *SessionRegistry, uc *scan.UseCase) *ScanHandler {
	return &ScanHandler{sessions: sessions, uc: uc}
}

// CreateSession godoc
// @Summary      Abrir sesión de escaneo
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.CreateScanSessionResponse
// @Router       /api/scan/sessions [post]
func (h *ScanHandler) CreateSession(c *fiber.Ctx) error {
	s := h.sessions.Create(GetUserID(c))
	return c.Status(fiber.StatusCreated).JSON(dto.CreateScanSessionResponse{
		SessionID:  s.ID,
		CooldownMS: int(h.sessions.cooldown.Milliseconds()),
		RearmMS:    int(h.sessions.rearm.Milliseconds()),
	})
}

// Decode godoc
// @Summary      Ofrecer un código decodificado a la sesión
// @Tags         scan
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        body  body  dto.DecodeRequest  true  "Código decodificado"
// @Success      200   {object}  dto.DecodeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/scan/sessions/{id}/decode [post]
func (h *ScanHandler) Decode(c *fiber.Ctx) error {
	userID := GetUserID(c)
	s := h.sessions.Get(c.Params("id"), userID)
	if s == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "sesión de escaneo no encontrada o expirada"})
	}
	var in dto.DecodeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code es requerido"})
	}

	verdict := s.Filter.Offer(in.Code)
	scanDecodesTotal.WithLabelValues(string(verdict)).Inc()
	if verdict != scanner.VerdictAccepted {
		return c.JSON(dto.DecodeResponse{Verdict: string(verdict)})
	}
	if !s.Filter.BeginProcessing() {
		// Otro decode ganó la carrera entre Offer y BeginProcessing.
		return c.JSON(dto.DecodeResponse{Verdict: string(scanner.VerdictBusy)})
	}

	resolution, err := h.uc.Resolve(c.UserContext(), userID, in.Code)
	s.Filter.Complete()

	out := dto.DecodeResponse{Verdict: string(scanner.VerdictAccepted), Barcode: in.Code}
	switch {
	case err == nil:
		out.Outcome = "found"
		out.Message = scanner.SuccessMessage(resolution)
		out.ProductID = resolution.ProductID
		out.ProductName = resolution.ProductName
		out.StockBefore = resolution.StockBefore
		out.StockAfter = resolution.StockAfter
	case errors.Is(err, scanner.ErrProductNotFound):
		out.Outcome = "not_found"
		out.Message = scanner.NotFoundMessage(in.Code)
	default:
		out.Outcome = "failed"
		out.ErrorKind = string(scanner.Classify(err))
		out.Message = scanner.FailureMessage(err)
	}
	scanResolutionsTotal.WithLabelValues(out.Outcome).Inc()
	return c.JSON(out)
}

// CloseSession godoc
// @Summary      Cerrar sesión de escaneo (idempotente)
// @Tags         scan
// @Security     Bearer
// @Param        id  path  string  true  "ID de la sesión"
// @Success      204
// @Router       /api/scan/sessions/{id} [delete]
func (h *ScanHandler) CloseSession(c *fiber.Ctx) error {
	h.sessions.Close(c.Params("id"), GetUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Historial de escaneos del usuario, más reciente primero
// @Tags         scan
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ScanHistoryResponse
// @Router       /api/scan/history [get]
func (h *ScanHandler) History(c *fiber.Ctx) error {
	userID := GetUserID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	page.DefaultPage()
	out, err := h.uc.History(userID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
