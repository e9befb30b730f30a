package model

import "time"

// FileMeta describes an uploaded attachment. Metadata only; no binary
// content is retained client-side after upload.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Capsule is the canonical capsule representation. Instances are built
// only by normalizing a server response and are never mutated afterwards;
// a refetch replaces the whole value.
type Capsule struct {
	ID          string     `json:"id"`
	OwnerEmail  string     `json:"ownerEmail"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DeliveryAt  time.Time  `json:"deliveryAt"`
	IsPublic    bool       `json:"isPublic"`
	SecretKey   string     `json:"secretKey"`
	UnlockURL   string     `json:"unlockUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	Files       []FileMeta `json:"files"`
	ImageURLs   []string   `json:"imageUrls,omitempty"`
}

// UploadFile is a file attachment supplied to capsule creation.
type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// CreateCapsuleInput is the transient construction request consumed once
// by the create operation.
type CreateCapsuleInput struct {
	Title       string
	Description string
	DeliveryAt  string
	IsPublic    bool
	Files       []UploadFile
}
