package handler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"propdocs/internal/draft"
	"propdocs/internal/model"
	"propdocs/internal/service"
)

const dateLayout = "2006-01-02"

// stageDraft copies a multipart upload form into d the way the upload dialog fills it:
// selecting the file first, then applying every field the client sent.
// The returned closer releases the uploaded file and is never nil.
func stageDraft(c *fiber.Ctx, d *draft.Draft) (io.Closer, error) {
	var closer io.Closer = io.NopCloser(nil)

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return closer, &draft.ValidationError{Field: "file", Reason: "cannot open uploaded file"}
		}
		closer = f
		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		d.SelectFile(draft.File{Name: fh.Filename, Size: fh.Size, ContentType: ct, Content: f})
	}

	if v := c.FormValue("name"); v != "" {
		d.SetName(strings.TrimSpace(v))
	}
	d.SetDescription(c.FormValue("description"))
	d.SetVersionNotes(c.FormValue("version_notes"))

	if v := c.FormValue("document_type"); v != "" {
		t, err := model.ParseDocumentType(v)
		if err != nil {
			return closer, &draft.ValidationError{Field: "document_type", Reason: err.Error()}
		}
		d.SetType(t)
	}
	if v := c.FormValue("expiry_date"); v != "" {
		expiry, err := parseDate(v)
		if err != nil {
			return closer, &draft.ValidationError{Field: "expiry_date", Reason: "expected YYYY-MM-DD or RFC 3339"}
		}
		d.SetExpiry(&expiry)
	}
	if v := c.FormValue("notification_period"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return closer, &draft.ValidationError{Field: "notification_period", Reason: "must be a whole number of days"}
		}
		d.SetNotificationPeriod(days)
	}

	return closer, nil
}

// stageTags resolves the submitted tag IDs against the shared tags and toggles each one
// into d. An ID that names no existing tag is a validation error.
func stageTags(c *fiber.Ctx, d *draft.Draft, catalog service.CatalogService) error {
	ids := formTagIDs(c)
	if len(ids) == 0 {
		return nil
	}
	known, err := catalog.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	byID := make(map[string]model.Tag, len(known))
	for _, t := range known {
		byID[t.ID] = t
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		tag, ok := byID[id]
		if !ok {
			return &draft.ValidationError{Field: "tags", Reason: fmt.Sprintf("unknown tag %q", id)}
		}
		d.ToggleTag(tag)
	}
	return nil
}

// documentOnlyFields can be set when a document is created but not by a version upload.
var documentOnlyFields = []string{"description", "document_type", "expiry_date", "notification_period", "tags", "notes"}

// rejectDocumentOnlyFields fails when a version upload carries a field it would otherwise drop.
func rejectDocumentOnlyFields(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	for _, f := range documentOnlyFields {
		if _, ok := form.Value[f]; ok {
			return &draft.ValidationError{Field: f, Reason: "cannot be changed by a version upload"}
		}
	}
	return nil
}

// formTagIDs accepts repeated "tags" fields as well as comma separated lists.
func formTagIDs(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	var ids []string
	for _, raw := range form.Value["tags"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func uploadInput(propertyID, notes string, p *draft.Payload) service.UploadInput {
	days := p.NotificationDays
	return service.UploadInput{
		PropertyID:       propertyID,
		Content:          p.File.Content,
		Filename:         p.File.Name,
		ContentType:      p.File.ContentType,
		Size:             p.File.Size,
		Name:             p.Name,
		Description:      p.Description,
		Type:             p.Type,
		ExpiryDate:       p.ExpiryDate,
		NotificationDays: &days,
		Tags:             p.Tags,
		Notes:            notes,
	}
}

func versionInput(p *draft.Payload) service.VersionInput {
	return service.VersionInput{
		Content:     p.File.Content,
		Filename:    p.File.Name,
		ContentType: p.File.ContentType,
		Size:        p.File.Size,
		Name:        p.Name,
		Notes:       p.VersionNotes,
	}
}
