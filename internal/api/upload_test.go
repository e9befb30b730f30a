package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mufeShot/chronocap-frontend/internal/errors"
	"github.com/mufeShot/chronocap-frontend/internal/model"
)

func TestCreateCapsule(t *testing.T) {
	ctx := context.Background()

	input := model.CreateCapsuleInput{
		Title:       "Birthday",
		Description: "open me later",
		DeliveryAt:  "2030-01-02T03:04:05Z",
		IsPublic:    true,
	}

	t.Run("requires an access token", func(t *testing.T) {
		client, _ := newTestClient(t, http.NewServeMux())
		_, err := client.CreateCapsule(ctx, input, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotAuthenticated, apperrors.GetCode(err))
	})

	t.Run("JSON path maps fields and reports 10 then 100", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/capsules", r.URL.Path)
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Birthday", body["title"])
			assert.Equal(t, "open me later", body["content"])
			assert.Equal(t, "2030-01-02T03:04:05Z", body["unlockAt"])
			assert.Equal(t, true, body["isPublic"])

			w.Write([]byte(`{"id":"9","secretKey":"k9","title":"Birthday"}`))
		}))
		signIn(t, sess)

		var milestones []int
		capsule, err := client.CreateCapsule(ctx, input, func(pct int) {
			milestones = append(milestones, pct)
		})
		require.NoError(t, err)

		assert.Equal(t, []int{10, 100}, milestones)
		assert.Equal(t, "9", capsule.ID)
		assert.Equal(t, testOrigin+"/unlock/k9", capsule.UnlockURL)
	})

	t.Run("multipart path uploads files with monotonic progress", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
			assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Birthday", r.FormValue("title"))
			assert.Equal(t, "open me later", r.FormValue("content"))
			assert.Equal(t, "2030-01-02T03:04:05Z", r.FormValue("unlockAt"))
			assert.Equal(t, "true", r.FormValue("isPublic"))

			files := r.MultipartForm.File["images"]
			require.Len(t, files, 2)
			assert.Equal(t, "a.png", files[0].Filename)
			assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

			part, err := files[1].Open()
			require.NoError(t, err)
			defer part.Close()
			content, err := io.ReadAll(part)
			require.NoError(t, err)
			assert.Equal(t, bytes.Repeat([]byte{0xAB}, 4096), content)

			w.Write([]byte(`{"id":"10","secretKey":"k10"}`))
		}))
		signIn(t, sess)

		withFiles := input
		withFiles.Files = []model.UploadFile{
			{Name: "a.png", ContentType: "image/png", Content: []byte("png-bytes")},
			{Name: "b.bin", Content: bytes.Repeat([]byte{0xAB}, 4096)},
		}

		var reports []int
		capsule, err := client.CreateCapsule(ctx, withFiles, func(pct int) {
			reports = append(reports, pct)
		})
		require.NoError(t, err)
		assert.Equal(t, "10", capsule.ID)

		require.NotEmpty(t, reports)
		assert.Equal(t, 0, reports[0])
		for i := 1; i < len(reports); i++ {
			assert.Greater(t, reports[i], reports[i-1])
		}
		assert.Equal(t, 100, reports[len(reports)-1])
	})

	t.Run("multipart failure surfaces the server message", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			w.Write([]byte(`{"message":"attachments too large"}`))
		}))
		signIn(t, sess)

		withFiles := input
		withFiles.Files = []model.UploadFile{{Name: "a.png", Content: []byte("x")}}

		_, err := client.CreateCapsule(ctx, withFiles, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "attachments too large")
	})

	t.Run("undecodable create response is InvalidResponse", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		signIn(t, sess)

		withFiles := input
		withFiles.Files = []model.UploadFile{{Name: "a.png", Content: []byte("x")}}

		_, err := client.CreateCapsule(ctx, withFiles, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidResponse, apperrors.GetCode(err))
	})
}
