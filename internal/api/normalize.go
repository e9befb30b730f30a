package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mufeShot/chronocap-frontend/internal/model"
)

// Server payloads are normalized defensively: every field access goes
// through a coercion helper with a safe default, so backend schema drift
// degrades to empty values instead of failing the caller.

// normalizeUser coerces a raw user record into the canonical profile.
// A name of any non-string type is dropped.
func normalizeUser(raw map[string]any) *model.UserProfile {
	user := &model.UserProfile{
		ID:    asString(raw["id"]),
		Email: asString(raw["email"]),
	}
	if name, ok := raw["name"].(string); ok {
		user.Name = name
	}
	return user
}

// normalizeCapsule maps the backend capsule shape (unlockAt, content,
// images, nested owner) onto the canonical model. origin is used to
// synthesize the unlock URL when the server does not send one.
func normalizeCapsule(raw map[string]any, origin string) model.Capsule {
	id := asString(raw["id"])
	if id == "" {
		id = asString(raw["_id"])
	}

	secret := asString(raw["secretKey"])
	if secret == "" {
		secret = asString(raw["secret"])
	}
	if secret == "" {
		secret = id
	}

	description := asString(raw["description"])
	if description == "" {
		description = asString(raw["content"])
	}

	deliveryAt, ok := asTime(raw["deliveryAt"])
	if !ok {
		if alt, altOK := asTime(raw["unlockAt"]); altOK {
			deliveryAt = alt
		} else {
			deliveryAt = time.Now()
		}
	}

	createdAt, ok := asTime(raw["createdAt"])
	if !ok {
		createdAt = time.Now()
	}

	files := normalizeFiles(raw)

	unlockURL := asString(raw["unlockUrl"])
	if unlockURL == "" && secret != "" {
		unlockURL = origin + "/unlock/" + secret
	}

	return model.Capsule{
		ID:          id,
		OwnerEmail:  ownerEmail(raw),
		Title:       asString(raw["title"]),
		Description: description,
		DeliveryAt:  deliveryAt,
		IsPublic:    asBool(raw["isPublic"]),
		SecretKey:   secret,
		UnlockURL:   unlockURL,
		CreatedAt:   createdAt,
		Files:       files,
		ImageURLs:   imageURLs(raw),
	}
}

func ownerEmail(raw map[string]any) string {
	if email := asString(raw["ownerEmail"]); email != "" {
		return email
	}
	if owner, ok := raw["owner"].(map[string]any); ok {
		if email := asString(owner["email"]); email != "" {
			return email
		}
	}
	if user, ok := raw["user"].(map[string]any); ok {
		return asString(user["email"])
	}
	return ""
}

// normalizeFiles maps the files array, or failing that the images array,
// onto attachment metadata. A missing or malformed array yields an empty
// list, never a failure.
func normalizeFiles(raw map[string]any) []model.FileMeta {
	if files, ok := raw["files"].([]any); ok {
		return fileMetas(files, "file")
	}
	if images, ok := raw["images"].([]any); ok {
		return fileMetas(images, "image")
	}
	return []model.FileMeta{}
}

func fileMetas(entries []any, fallbackPrefix string) []model.FileMeta {
	metas := make([]model.FileMeta, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case map[string]any:
			name := asString(v["name"])
			if name == "" {
				name = asString(v["filename"])
			}
			if name == "" {
				name = fmt.Sprintf("%s_%d", fallbackPrefix, i)
			}
			mime := asString(v["type"])
			if mime == "" {
				mime = asString(v["mime"])
			}
			metas = append(metas, model.FileMeta{Name: name, Type: mime, Size: asInt64(v["size"])})
		case string:
			parts := strings.Split(v, "/")
			name := parts[len(parts)-1]
			if name == "" {
				name = fmt.Sprintf("%s_%d", fallbackPrefix, i)
			}
			metas = append(metas, model.FileMeta{Name: name})
		default:
			metas = append(metas, model.FileMeta{Name: fmt.Sprintf("%s_%d", fallbackPrefix, i)})
		}
	}
	return metas
}

func imageURLs(raw map[string]any) []string {
	images, ok := raw["images"].([]any)
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(images))
	for _, entry := range images {
		if s, ok := entry.(string); ok {
			urls = append(urls, s)
		}
	}
	if len(urls) == 0 {
		return nil
	}
	return urls
}

// extractCapsuleList accepts either a bare array payload or an envelope
// object carrying a "data" array.
func extractCapsuleList(payload any) []map[string]any {
	var entries []any
	switch v := payload.(type) {
	case []any:
		entries = v
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			entries = data
		}
	}

	records := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if record, ok := entry.(map[string]any); ok {
			records = append(records, record)
		} else {
			// Malformed elements degrade to all-default capsules.
			records = append(records, map[string]any{})
		}
	}
	return records
}

// Coercion helpers. JSON numbers arrive as float64.

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	default:
		return false
	}
}

// asTime accepts RFC 3339 strings or epoch milliseconds.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		return time.Time{}, false
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	default:
		return time.Time{}, false
	}
}
