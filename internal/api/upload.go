package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/model"
)

// CreateCapsule sends a capsule to the backend. With file attachments it
// uploads multipart with real transfer progress; without, it posts JSON
// and reports the synthetic 10/100 milestones. Requires an access token.
//
// Wire mapping: deliveryAt is sent as unlockAt and description as
// content; file parts go under the "images" field.
func (c *Client) CreateCapsule(ctx context.Context, input model.CreateCapsuleInput, onProgress func(pct int)) (*model.Capsule, error) {
	if c.session.AccessToken() == "" {
		return nil, apperrors.NotAuthenticated()
	}

	report := onProgress
	if report == nil {
		report = func(int) {}
	}

	if len(input.Files) > 0 {
		return c.createMultipart(ctx, input, report)
	}
	return c.createJSON(ctx, input, report)
}

func (c *Client) createJSON(ctx context.Context, input model.CreateCapsuleInput, report func(int)) (*model.Capsule, error) {
	report(10)

	payload, err := json.Marshal(map[string]any{
		"title":    input.Title,
		"content":  input.Description,
		"isPublic": input.IsPublic,
		"unlockAt": input.DeliveryAt,
	})
	if err != nil {
		return nil, apperrors.Internal("encode capsule").WithCause(err)
	}

	var record map[string]any
	if err := c.dispatcher.DoJSON(ctx, "/capsules", RequestOptions{
		Method:      http.MethodPost,
		Body:        payload,
		ContentType: "application/json",
	}, &record); err != nil {
		return nil, err
	}

	capsule := normalizeCapsule(record, c.origin)
	report(100)
	return &capsule, nil
}

func (c *Client) createMultipart(ctx context.Context, input model.CreateCapsuleInput, report func(int)) (*model.Capsule, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":    input.Title,
		"unlockAt": input.DeliveryAt,
		"isPublic": strconv.FormatBool(input.IsPublic),
	}
	if input.Description != "" {
		fields["content"] = input.Description
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, apperrors.Internal("encode form field").WithCause(err)
		}
	}

	for _, file := range input.Files {
		part, err := createFilePart(writer, file)
		if err != nil {
			return nil, apperrors.Internal("encode file part").WithCause(err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, apperrors.Internal("encode file part").WithCause(err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.Internal("finalize multipart body").WithCause(err)
	}

	report(0)
	progress := &progressReader{reader: &buf, total: int64(buf.Len()), report: report}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dispatcher.BaseURL()+"/capsules", progress)
	if err != nil {
		return nil, apperrors.Internal("build upload request").WithCause(err)
	}
	req.ContentLength = progress.total
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())
	for key, value := range c.session.AuthHeaders() {
		req.Header.Set(key, value)
	}

	res, err := c.dispatcher.Transport().Do(req)
	if err != nil {
		return nil, apperrors.NetworkFailure(err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.NetworkFailure(err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, statusError(res.StatusCode, extractMessage(payload))
	}

	var record map[string]any
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, apperrors.InvalidResponse(err)
	}

	capsule := normalizeCapsule(record, c.origin)
	if progress.lastPct < 100 {
		report(100)
	}
	return &capsule, nil
}

func createFilePart(writer *multipart.Writer, file model.UploadFile) (io.Writer, error) {
	if file.ContentType == "" {
		return writer.CreateFormFile("images", file.Name)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="images"; filename="`+escapeQuotes(file.Name)+`"`)
	header.Set("Content-Type", file.ContentType)
	return writer.CreatePart(header)
}

func escapeQuotes(s string) string {
	replaced := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			replaced = append(replaced, '\\')
		}
		replaced = append(replaced, s[i])
	}
	return string(replaced)
}

// progressReader reports upload percentage as the transport consumes the
// body. Reports are strictly increasing, ending at 100.
type progressReader struct {
	reader  io.Reader
	total   int64
	read    int64
	lastPct int
	report  func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > p.lastPct {
			p.lastPct = pct
			p.report(pct)
		}
	}
	return n, err
}
