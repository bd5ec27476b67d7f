package handler

import (
	"github.com/gofiber/fiber/v2"

	"propdocs/internal/service"
)

// ListProperties godoc
// @Summary List properties
// @Success 200 {array} model.Property
// @Router /properties [get]
func ListProperties(catalog service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		props, err := catalog.ListProperties(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": props, "total": len(props)})
	}
}

// ListTags godoc
// @Summary List tags
// @Success 200 {array} model.Tag
// @Router /tags [get]
func ListTags(catalog service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tags, err := catalog.ListTags(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": tags, "total": len(tags)})
	}
}

type createTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateTag godoc
// @Summary Create a tag
// @Accept json
// @Success 201 {object} model.Tag
// @Router /tags [post]
func CreateTag(catalog service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTagRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		tag, err := catalog.CreateTag(c.UserContext(), req.Name, req.Color)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
}
