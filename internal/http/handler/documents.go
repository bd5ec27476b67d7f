package handler

import (
	"mime"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"propdocs/internal/draft"
	"propdocs/internal/model"
	"propdocs/internal/selection"
	"propdocs/internal/service"
)

// DocumentListResult is the response body of document list endpoints.
type DocumentListResult struct {
	Property *model.Property    `json:"property,omitempty"`
	Folder   *model.DocumentType `json:"folder,omitempty"`
	Query    string              `json:"query,omitempty"`
	Items    []model.Document    `json:"data"`
	Total    int                 `json:"total"`
}

func listResult(items []model.Document) DocumentListResult {
	if items == nil {
		items = []model.Document{}
	}
	return DocumentListResult{Items: items, Total: len(items)}
}

// documentID validates the :id route parameter.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ListPropertyDocuments godoc
// @Summary List a property's documents
// @Param propertyID path string true "Property ID"
// @Param folder query string false "Document type folder"
// @Param q query string false "Search name or description"
// @Success 200 {object} DocumentListResult
// @Failure 404 {object} errorPayload
// @Router /properties/{propertyID}/documents [get]
func ListPropertyDocuments(catalog service.CatalogService, docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		props, err := catalog.ListProperties(ctx)
		if err != nil {
			return writeServiceError(c, err)
		}

		var sel selection.Selection
		sel.SelectProperty(c.Params("propertyID"), props)
		if sel.Property() == nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "property not found")
		}
		if v := c.Query("folder"); v != "" {
			folder, err := model.ParseDocumentType(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER", "unknown document type")
			}
			sel.SelectFolder(&folder)
		}
		sel.SetSearchQuery(c.Query("q"))

		all, err := docs.ListPropertyDocuments(ctx, sel.Property().ID, sel.Folder())
		if err != nil {
			return writeServiceError(c, err)
		}

		res := listResult(slices.Collect(sel.Filter(all)))
		res.Property = sel.Property()
		res.Folder = sel.Folder()
		res.Query = sel.Query()
		return c.JSON(res)
	}
}

// UploadDocument godoc
// @Summary Upload a new document to a property
// @Accept multipart/form-data
// @Param propertyID path string true "Property ID"
// @Param file formData file true "Document file"
// @Param tags formData string false "Existing tag IDs, repeated or comma separated"
// @Param notes formData string false "Document notes"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /properties/{propertyID}/documents [post]
func UploadDocument(catalog service.CatalogService, docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		propertyID := c.Params("propertyID")
		if _, err := uuid.Parse(propertyID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid property id format")
		}
		prop, err := catalog.GetProperty(ctx, propertyID)
		if err != nil {
			return writeServiceError(c, err)
		}

		d := draft.New()
		closer, err := stageDraft(c, d)
		defer closer.Close()
		if err == nil {
			err = stageTags(c, d, catalog)
		}
		if err != nil {
			return writeServiceError(c, err)
		}

		notes := c.FormValue("notes")
		var created *model.Document
		err = d.Submit(draft.NewDocument{}, func(p *draft.Payload) error {
			doc, err := docs.Upload(ctx, uploadInput(prop.ID, notes, p))
			created = doc
			return err
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UploadVersion godoc
// @Summary Upload a new version of a document
// @Accept multipart/form-data
// @Param id path string true "Document ID"
// @Param file formData file true "Document file"
// @Param version_notes formData string false "Notes on the superseded version"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Router /documents/{id}/versions [post]
func UploadVersion(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := rejectDocumentOnlyFields(c); err != nil {
			return writeServiceError(c, err)
		}

		d := draft.New()
		closer, err := stageDraft(c, d)
		defer closer.Close()
		if err != nil {
			return writeServiceError(c, err)
		}
		// A version keeps the document's name unless the client renames it.
		if c.FormValue("name") == "" {
			d.SetName("")
		}

		var updated *model.Document
		err = d.Submit(draft.NewVersionOf{DocumentID: id}, func(p *draft.Payload) error {
			doc, err := docs.UploadVersion(c.UserContext(), id, versionInput(p))
			updated = doc
			return err
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(updated)
	}
}

// GetDocument godoc
// @Summary Get document metadata
// @Param id path string true "Document ID"
// @Success 200 {object} model.Document
// @Router /documents/{id} [get]
func GetDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docs.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument godoc
// @Summary Download a document's content
// @Param id path string true "Document ID"
// @Param version query int false "Prior version number"
// @Produce octet-stream
// @Router /documents/{id}/download [get]
func DownloadDocument(docs service.DocumentService, access service.AccessRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docs.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		path := doc.StoragePath
		if v := c.Query("version"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version")
			}
			if n != doc.Version {
				i := slices.IndexFunc(doc.Versions, func(dv model.DocumentVersion) bool { return dv.Version == n })
				if i < 0 {
					return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "version not found")
				}
				path = doc.Versions[i].StoragePath
			}
		}

		dl, err := access.Download(c.UserContext(), service.DownloadRequest{
			DocumentID:  doc.ID,
			StoragePath: path,
			DisplayName: doc.Name,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		ct := dl.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name}))
		return c.Send(dl.Content)
	}
}

// DocumentURL godoc
// @Summary Get a time-limited download URL
// @Param id path string true "Document ID"
// @Router /documents/{id}/url [get]
func DocumentURL(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := docs.PresignURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

type updateDocumentRequest struct {
	Favorite *bool   `json:"favorite"`
	Notes    *string `json:"notes"`
}

// UpdateDocument godoc
// @Summary Update favorite flag or notes
// @Accept json
// @Param id path string true "Document ID"
// @Success 200 {object} model.Document
// @Router /documents/{id} [patch]
func UpdateDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Favorite == nil && req.Notes == nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "nothing to update")
		}

		var (
			doc *model.Document
			err error
		)
		if req.Favorite != nil {
			if doc, err = docs.SetFavorite(c.UserContext(), id, *req.Favorite); err != nil {
				return writeServiceError(c, err)
			}
		}
		if req.Notes != nil {
			if doc, err = docs.UpdateNotes(c.UserContext(), id, *req.Notes); err != nil {
				return writeServiceError(c, err)
			}
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary Delete a document and its stored files
// @Param id path string true "Document ID"
// @Success 204
// @Failure 502 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docs.Delete(c.UserContext(), id, c.Query("storage_path")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListRecentDocuments godoc
// @Summary Most recently uploaded documents
// @Param limit query int false "Maximum number of documents"
// @Success 200 {object} DocumentListResult
// @Router /documents/recent [get]
func ListRecentDocuments(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil || limit < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		items, err := docs.ListRecent(c.UserContext(), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(listResult(items))
	}
}

// ListExpiringDocuments godoc
// @Summary Documents whose expiry notification window is open
// @Success 200 {object} DocumentListResult
// @Router /documents/expiring [get]
func ListExpiringDocuments(docs service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := docs.ListExpiring(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(listResult(items))
	}
}
