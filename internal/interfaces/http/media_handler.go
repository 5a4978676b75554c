package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/InvenScan-api/internal/application/dto"
	"github.com/jhoicas/InvenScan-api/internal/application/media"
	"github.com/jhoicas/InvenScan-api/internal/domain"
)

// MediaHandler maneja la subida y borrado de imágenes de producto (protegido).
type MediaHandler struct {
	uc *media.UseCase
}

// NewMediaHandler construye el handler.
func NewMediaHandler(uc *media.UseCase) *MediaHandler {
	return &MediaHandler{uc: uc}
}

// Upload godoc
// @Summary      Subir imagen de producto (multipart, campo "image")
// @Tags         media
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "ID del producto"
// @Param        image  formData  file    true  "Imagen webp, jpeg o png"
// @Success      200    {object}  dto.UploadImageResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      413    {object}  dto.ErrorResponse
// @Router       /api/products/{id}/image [post]
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID := GetUserID(c)
	productID := c.Params("id")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo multipart \"image\" requerido"})
	}
	if fileHeader.Size > h.uc.MaxSize() {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "TOO_LARGE", Message: "la imagen excede el tamaño máximo"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}
	defer f.Close()

	out, err := h.uc.UploadProductImage(userID, productID, f)
	if err != nil {
		return mediaError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar imagen de producto
// @Tags         media
// @Security     Bearer
// @Param        id  path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/image [delete]
func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	productID := c.Params("id")
	if err := h.uc.DeleteProductImage(userID, productID); err != nil {
		return mediaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func mediaError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNSUPPORTED_TYPE", Message: "solo se aceptan imágenes webp, jpeg o png"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el producto pertenece a otro usuario"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
